package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const selectVaccine = `
	SELECT v.code, v.description, v.vaccine_type_code, t.description AS vaccine_type_description,
		v.created_at, v.updated_at
	FROM vaccines v
	JOIN vaccine_types t ON t.code = v.vaccine_type_code
`

type vaccineRepository struct {
	db *sqlx.DB
}

func NewVaccineRepository(db *sqlx.DB) repository.VaccineRepository {
	return &vaccineRepository{db: db}
}

func (r *vaccineRepository) List(ctx context.Context) ([]*model.Vaccine, error) {
	vaccines := []*model.Vaccine{}
	if err := r.db.SelectContext(ctx, &vaccines, selectVaccine+" ORDER BY v.description"); err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	return vaccines, nil
}

func (r *vaccineRepository) ListByType(ctx context.Context, vaccineTypeCode string) ([]*model.Vaccine, error) {
	vaccines := []*model.Vaccine{}
	query := selectVaccine + " WHERE v.vaccine_type_code = $1 ORDER BY v.description"
	if err := r.db.SelectContext(ctx, &vaccines, query, vaccineTypeCode); err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	return vaccines, nil
}

func (r *vaccineRepository) Get(ctx context.Context, code string) (*model.Vaccine, error) {
	var v model.Vaccine
	if err := r.db.GetContext(ctx, &v, selectVaccine+" WHERE v.code = $1", code); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vaccineRepository) Create(ctx context.Context, v *model.Vaccine) error {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccines (code, description, vaccine_type_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.Code, v.Description, v.VaccineTypeCode, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vaccine: %w", translate(err))
	}
	return nil
}

func (r *vaccineRepository) Update(ctx context.Context, v *model.Vaccine) (bool, error) {
	v.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccines SET description = $1, vaccine_type_code = $2, updated_at = $3
		WHERE code = $4
	`, v.Description, v.VaccineTypeCode, v.UpdatedAt, v.Code)
	if err != nil {
		return false, fmt.Errorf("failed to update vaccine: %w", err)
	}
	return affected(res)
}

func (r *vaccineRepository) Delete(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vaccines WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete vaccine: %w", err)
	}
	return affected(res)
}

func (r *vaccineRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM vaccines WHERE code = $1)`, code)
	return exists, err
}

func (r *vaccineRepository) TypeExists(ctx context.Context, vaccineTypeCode string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM vaccine_types WHERE code = $1)`, vaccineTypeCode)
	return exists, err
}
