package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

var catalogTables = map[model.CatalogKind]string{
	model.CatalogWard:                  "wards",
	model.CatalogAdmissionType:         "admission_types",
	model.CatalogDisease:               "diseases",
	model.CatalogDischargeType:         "discharge_types",
	model.CatalogOperation:             "operations",
	model.CatalogPregnantTreatmentType: "pregnant_treatment_types",
	model.CatalogDeliveryType:          "delivery_types",
	model.CatalogDeliveryResultType:    "delivery_result_types",
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) List(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q", kind)
	}

	entries := []model.CatalogEntry{}
	query := fmt.Sprintf("SELECT code, description FROM %s ORDER BY code", table)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return entries, nil
}
