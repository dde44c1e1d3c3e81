package admission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/catalog"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const (
	msgAlreadyAdmitted    = "Patient already admitted!"
	msgAdmissionNotFound  = "Admission not found!"
	msgAdmissionMismatch  = "Admission id does not match the admission being updated!"
	msgPatientMismatch    = "Admission does not belong to the patient!"
	msgNotCreated         = "Admission not created!"
	msgNotUpdated         = "Admission not updated!"
	msgOpenWithDischarge  = "An open admission cannot carry a discharge date!"
	msgNoCurrentAdmission = "Patient is not currently admitted!"
	msgInvalidRange       = "the range start must not be after its end!"
)

// CatalogSource hands out the reference catalog snapshot used for a request.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

type Auditor interface {
	Log(ctx context.Context, action, entityType, entityID string, opts *audit.LogOptions) error
}

type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// Service owns the admission lifecycle: admit, update, discharge and
// soft-delete, plus the read queries around them.
type Service struct {
	repo      repository.AdmissionRepository
	patients  repository.PatientRepository
	catalogs  CatalogSource
	validator *Validator
	auditor   Auditor
	events    Emitter
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(
	repo repository.AdmissionRepository,
	patients repository.PatientRepository,
	catalogs CatalogSource,
	auditor Auditor,
	events Emitter,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		catalogs:  catalogs,
		validator: NewValidator(patients),
		auditor:   auditor,
		events:    events,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Service) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := s.catalogs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference catalogs: %w", err)
	}
	return snap, nil
}

// observe counts a transition outcome. It is deferred with a pointer to the
// named error result.
func (s *Service) observe(transition string, err *error) {
	status := "success"
	if *err != nil {
		status = "failure"
	}
	s.metrics.AdmissionTransitions.WithLabelValues(transition, status).Inc()
}

// record audits and emits a committed change. Failures are logged; the write
// itself already succeeded.
func (s *Service) record(ctx context.Context, action, eventType string, a *model.Admission) {
	id := strconv.Itoa(a.ID)
	if err := s.auditor.Log(ctx, action, model.AuditEntityAdmission, id, &audit.LogOptions{Changes: a}); err != nil {
		log.Warn().Err(err).Str("admission_id", id).Str("action", action).Msg("failed to write audit log")
	}
	if err := s.events.Emit(ctx, eventType, a); err != nil {
		log.Warn().Err(err).Str("admission_id", id).Str("event_type", eventType).Msg("failed to record outbox event")
	}
}

// Create admits a patient. The stored admission always has Admitted set and a
// progressive number within its ward and year.
func (s *Service) Create(ctx context.Context, a *model.Admission) (created *model.Admission, err error) {
	defer s.observe("create", &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, err = s.validator.Validate(ctx, snap, a); err != nil {
		return nil, err
	}
	if a.DisDate != nil {
		return nil, apperrors.Invalid(msgOpenWithDischarge)
	}

	current, err := s.repo.GetCurrent(ctx, a.PatientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get current admission: %w", err)
	}
	if current != nil {
		return nil, apperrors.Conflict(msgAlreadyAdmitted)
	}

	a.Admitted = model.AdmissionAdmitted
	if a.YProg == 0 {
		next, err := s.nextProgressive(ctx, a.WardCode, a.AdmDate)
		if err != nil {
			return nil, err
		}
		a.YProg = next
	}

	id, err := s.repo.Create(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgAlreadyAdmitted)
		}
		return nil, apperrors.PersistenceFailure(msgNotCreated, err)
	}
	if id <= 0 {
		return nil, apperrors.PersistenceFailure(msgNotCreated, nil)
	}
	a.ID = id

	s.record(ctx, model.AuditActionCreate, model.EventAdmissionCreated, a)
	return a, nil
}

// Update replaces the admission stored under id with a. The candidate must
// carry the same id. A candidate with Admitted == 0 must satisfy the
// discharge rules as well.
func (s *Service) Update(ctx context.Context, id int, a *model.Admission) (updated *model.Admission, err error) {
	defer s.observe("update", &err)

	prior, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgAdmissionNotFound)
		}
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	if a.ID != prior.ID {
		return nil, apperrors.Conflict(msgAdmissionMismatch)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if a.Admitted == model.AdmissionDischarged {
		_, err = s.validator.ValidateDischarge(ctx, snap, a)
	} else {
		_, err = s.validator.Validate(ctx, snap, a)
	}
	if err != nil {
		return nil, err
	}
	if a.IsAdmitted() && a.DisDate != nil {
		return nil, apperrors.Invalid(msgOpenWithDischarge)
	}

	if a.YProg == 0 {
		a.YProg = prior.YProg
	}
	a.CreatedAt = prior.CreatedAt

	ok, err := s.repo.Update(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgAlreadyAdmitted)
		}
		return nil, apperrors.PersistenceFailure(msgNotUpdated, err)
	}
	if !ok {
		return nil, apperrors.PersistenceFailure(msgNotUpdated, nil)
	}

	eventType := model.EventAdmissionUpdated
	if prior.IsAdmitted() && !a.IsAdmitted() {
		eventType = model.EventAdmissionDischarged
	}
	s.record(ctx, model.AuditActionUpdate, eventType, a)
	return a, nil
}

// Discharge closes the patient's current admission using the discharge data
// carried by a. It reports whether the store accepted the change.
func (s *Service) Discharge(ctx context.Context, patientCode int, a *model.Admission) (ok bool, err error) {
	defer s.observe("discharge", &err)

	if _, err = s.getPatient(ctx, patientCode); err != nil {
		return false, err
	}

	current, err := s.repo.GetCurrent(ctx, patientCode)
	if err != nil {
		return false, fmt.Errorf("failed to get current admission: %w", err)
	}
	if current == nil {
		return false, apperrors.NoContent(msgNoCurrentAdmission)
	}
	if a.ID == 0 {
		a.ID = current.ID
	}
	if a.ID != current.ID {
		return false, apperrors.Conflict(msgAdmissionMismatch)
	}
	if a.PatientCode == 0 {
		a.PatientCode = patientCode
	}
	if a.PatientCode != patientCode {
		return false, apperrors.Conflict(msgPatientMismatch)
	}
	if a.AdmDate.IsZero() {
		a.AdmDate = current.AdmDate
	}
	if a.YProg == 0 {
		a.YProg = current.YProg
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return false, err
	}
	if _, err = s.validator.ValidateDischarge(ctx, snap, a); err != nil {
		return false, err
	}

	a.Admitted = model.AdmissionDischarged
	a.CreatedAt = current.CreatedAt
	ok, err = s.repo.Update(ctx, a)
	if err != nil {
		return false, apperrors.PersistenceFailure(msgNotUpdated, err)
	}
	if ok {
		s.record(ctx, model.AuditActionDischarge, model.EventAdmissionDischarged, a)
	}
	return ok, nil
}

// SoftDelete hides the admission from every later query. Deleting an
// admission that is already hidden reports NotFound.
func (s *Service) SoftDelete(ctx context.Context, id int) (ok bool, err error) {
	defer s.observe("delete", &err)

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NotFound(msgAdmissionNotFound)
		}
		return false, fmt.Errorf("failed to get admission: %w", err)
	}

	ok, err = s.repo.SoftDelete(ctx, id)
	if err != nil {
		return false, apperrors.PersistenceFailure("Admission not deleted!", err)
	}
	if ok {
		a.Deleted = true
		s.record(ctx, model.AuditActionDelete, model.EventAdmissionDeleted, a)
	}
	return ok, nil
}

// Get returns nil without error when no visible admission has that id.
func (s *Service) Get(ctx context.Context, id int) (*model.Admission, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	return a, nil
}

// GetCurrent returns the open admission of a patient, or nil when the patient
// is not admitted. An unknown patient is NotFound.
func (s *Service) GetCurrent(ctx context.Context, patientCode int) (*model.Admission, error) {
	if _, err := s.getPatient(ctx, patientCode); err != nil {
		return nil, err
	}
	a, err := s.repo.GetCurrent(ctx, patientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get current admission: %w", err)
	}
	return a, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientCode int) ([]*model.Admission, error) {
	if _, err := s.getPatient(ctx, patientCode); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByPatient(ctx, patientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	return list, nil
}

func (s *Service) ListAdmittedPatients(ctx context.Context, filter *model.AdmittedPatientFilter) ([]*model.AdmittedPatient, error) {
	if filter == nil {
		filter = &model.AdmittedPatientFilter{}
	}
	for _, r := range []*model.DateRange{filter.AdmissionRange, filter.DischargeRange} {
		if r != nil && r.From.After(r.To) {
			return nil, apperrors.Invalid(msgInvalidRange)
		}
	}

	list, err := s.repo.ListAdmittedPatients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list admitted patients: %w", err)
	}
	return list, nil
}

// NextProgressiveNumber returns the number Create would assign to an
// admission into the ward dated today. Back-dated admissions are numbered
// within the year of their own admission date.
func (s *Service) NextProgressiveNumber(ctx context.Context, wardCode string) (int, error) {
	if err := s.checkWard(ctx, wardCode); err != nil {
		return 0, err
	}
	return s.nextProgressive(ctx, wardCode, s.now())
}

// nextProgressive numbers admissions per ward and per year of admDate.
func (s *Service) nextProgressive(ctx context.Context, wardCode string, admDate time.Time) (int, error) {
	last, err := s.repo.MaxProgressive(ctx, wardCode, admDate.Year())
	if err != nil {
		return 0, fmt.Errorf("failed to get progressive number: %w", err)
	}
	return last + 1, nil
}

// BedsOccupied counts the open admissions of a ward.
func (s *Service) BedsOccupied(ctx context.Context, wardCode string) (int, error) {
	if err := s.checkWard(ctx, wardCode); err != nil {
		return 0, err
	}
	n, err := s.repo.CountOccupiedBeds(ctx, wardCode)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied beds: %w", err)
	}
	return n, nil
}

func (s *Service) checkWard(ctx context.Context, wardCode string) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Resolve(model.CatalogWard, wardCode); wardCode == "" || !ok {
		return apperrors.NotFound(fmt.Sprintf("Ward not found for code: %s", wardCode))
	}
	return nil
}

func (s *Service) getPatient(ctx context.Context, code int) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgPatientNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}
