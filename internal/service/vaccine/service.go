package vaccine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Auditor interface {
	Log(ctx context.Context, action, entityType, entityID string, opts *audit.LogOptions) error
}

type Service struct {
	repo    repository.VaccineRepository
	auditor Auditor
}

func NewService(repo repository.VaccineRepository, auditor Auditor) *Service {
	return &Service{repo: repo, auditor: auditor}
}

func (s *Service) List(ctx context.Context) ([]*model.Vaccine, error) {
	vaccines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	return vaccines, nil
}

func (s *Service) ListByType(ctx context.Context, vaccineTypeCode string) ([]*model.Vaccine, error) {
	vaccines, err := s.repo.ListByType(ctx, vaccineTypeCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccines by type: %w", err)
	}
	return vaccines, nil
}

func (s *Service) Create(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error) {
	if err := s.checkFields(ctx, v); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, v.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check vaccine code: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("Vaccine type already present!")
	}

	if err := s.repo.Create(ctx, v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Vaccine type already present!")
		}
		return nil, apperrors.PersistenceFailure("Vaccine is not created!", err)
	}

	s.audit(ctx, model.AuditActionCreate, v)
	return v, nil
}

func (s *Service) Update(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error) {
	if err := s.checkFields(ctx, v); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, v)
	if err != nil {
		return nil, apperrors.PersistenceFailure("Vaccine is not updated!", err)
	}
	if !ok {
		return nil, apperrors.PersistenceFailure("Vaccine is not updated!", nil)
	}

	s.audit(ctx, model.AuditActionUpdate, v)
	return v, nil
}

// Delete removes the vaccine. Unknown codes are NotFound.
func (s *Service) Delete(ctx context.Context, code string) (bool, error) {
	v, err := s.repo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NotFound("Vaccine not found!")
		}
		return false, fmt.Errorf("failed to get vaccine: %w", err)
	}

	ok, err := s.repo.Delete(ctx, code)
	if err != nil {
		return false, apperrors.PersistenceFailure("Vaccine is not deleted!", err)
	}
	if !ok {
		return false, apperrors.PersistenceFailure("Vaccine is not deleted!", nil)
	}

	s.audit(ctx, model.AuditActionDelete, v)
	return true, nil
}

// CheckCode reports whether a vaccine with code exists.
func (s *Service) CheckCode(ctx context.Context, code string) (bool, error) {
	exists, err := s.repo.Exists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to check vaccine code: %w", err)
	}
	return exists, nil
}

func (s *Service) checkFields(ctx context.Context, v *model.Vaccine) error {
	if v.Code == "" {
		return apperrors.MissingField("code", "Vaccine code field is required!")
	}
	if v.Description == "" {
		return apperrors.MissingField("description", "Vaccine description field is required!")
	}
	if v.VaccineTypeCode == "" {
		return apperrors.MissingField("vaccineType", "Vaccine type field is required!")
	}

	ok, err := s.repo.TypeExists(ctx, v.VaccineTypeCode)
	if err != nil {
		return fmt.Errorf("failed to check vaccine type: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Vaccine type not found!")
	}
	return nil
}

func (s *Service) audit(ctx context.Context, action string, v *model.Vaccine) {
	if err := s.auditor.Log(ctx, action, model.AuditEntityVaccine, v.Code, &audit.LogOptions{Changes: v}); err != nil {
		log.Warn().Err(err).Str("vaccine_code", v.Code).Str("action", action).Msg("failed to write audit log")
	}
}
