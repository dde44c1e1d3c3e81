package postgres

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

// Get returns repository.ErrNotFound for unknown or deleted patients.
func (r *patientRepository) Get(ctx context.Context, code int) (*model.Patient, error) {
	query := "SELECT " + strings.Join(patientColumns, ", ") + " FROM patients WHERE code = $1 AND NOT deleted"
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, code); err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}
