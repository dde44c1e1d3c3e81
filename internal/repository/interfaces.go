package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	// AdmissionRepository never returns soft-deleted rows.
	AdmissionRepository interface {
		// Create returns the generated key.
		Create(ctx context.Context, admission *model.Admission) (int, error)
		Get(ctx context.Context, id int) (*model.Admission, error)
		// Update replaces every column; false means no row was touched.
		Update(ctx context.Context, admission *model.Admission) (bool, error)
		SoftDelete(ctx context.Context, id int) (bool, error)
		// GetCurrent returns nil without error when the patient is not admitted.
		GetCurrent(ctx context.Context, patientCode int) (*model.Admission, error)
		ListByPatient(ctx context.Context, patientCode int) ([]*model.Admission, error)
		ListAdmittedPatients(ctx context.Context, filter *model.AdmittedPatientFilter) ([]*model.AdmittedPatient, error)
		MaxProgressive(ctx context.Context, wardCode string, year int) (int, error)
		CountOccupiedBeds(ctx context.Context, wardCode string) (int, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, code int) (*model.Patient, error)
	}

	CatalogRepository interface {
		List(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
	}

	VaccineRepository interface {
		List(ctx context.Context) ([]*model.Vaccine, error)
		ListByType(ctx context.Context, vaccineTypeCode string) ([]*model.Vaccine, error)
		Get(ctx context.Context, code string) (*model.Vaccine, error)
		Create(ctx context.Context, vaccine *model.Vaccine) error
		Update(ctx context.Context, vaccine *model.Vaccine) (bool, error)
		Delete(ctx context.Context, code string) (bool, error)
		Exists(ctx context.Context, code string) (bool, error)
		TypeExists(ctx context.Context, vaccineTypeCode string) (bool, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
