package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/catalog"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

const (
	msgWardRequired          = "Ward field is required!"
	msgWardNotFound          = "Ward not found!"
	msgAdmTypeRequired       = "Admission type field is required!"
	msgAdmTypeNotFound       = "Admission type not found!"
	msgPatientRequired       = "Patient field is required!"
	msgPatientNotFound       = "Patient not found!"
	msgAdmDateRequired       = "Admission date field is required!"
	msgDiseaseOutRequired    = "at least one disease must be give!"
	msgDisDateRequired       = "the exit date must be filled in!"
	msgDisDateBeforeAdmDate  = "the exit date must be after the entry date!"
	msgDisTypeRequiredOrGone = "the type of output is mandatory or does not exist!"
)

// Validator checks a candidate admission against the reference catalogs and
// the patient registry. It never writes.
type Validator struct {
	patients repository.PatientRepository
}

func NewValidator(patients repository.PatientRepository) *Validator {
	return &Validator{patients: patients}
}

type optionalRef struct {
	kind    model.CatalogKind
	code    *string
	message string
}

func optionalRefs(a *model.Admission) []optionalRef {
	return []optionalRef{
		{model.CatalogDisease, a.DiseaseInCode, "Disease in not found!"},
		{model.CatalogDisease, a.DiseaseOut1Code, "Disease out 1 not found!"},
		{model.CatalogDisease, a.DiseaseOut2Code, "Disease out 2 not found!"},
		{model.CatalogDisease, a.DiseaseOut3Code, "Disease out 3 not found!"},
		{model.CatalogOperation, a.OperationCode, "Operation not found!"},
		{model.CatalogDischargeType, a.DisTypeCode, "Discharge type not found!"},
		{model.CatalogPregnantTreatmentType, a.PregTreatmentTypeCode, "Pregnant treatment type not found!"},
		{model.CatalogDeliveryType, a.DeliveryTypeCode, "Delivery type not found!"},
		{model.CatalogDeliveryResultType, a.DeliveryResultCode, "Delivery result type not found!"},
	}
}

// Validate applies the reference rules in order and stops at the first
// failure. On success it returns the referenced patient.
func (v *Validator) Validate(ctx context.Context, snap *catalog.Snapshot, a *model.Admission) (*model.Patient, error) {
	if a.WardCode == "" {
		return nil, apperrors.MissingField("ward", msgWardRequired)
	}
	if _, ok := snap.Resolve(model.CatalogWard, a.WardCode); !ok {
		return nil, apperrors.NotFound(msgWardNotFound)
	}

	if a.AdmTypeCode == "" {
		return nil, apperrors.MissingField("admission type", msgAdmTypeRequired)
	}
	if _, ok := snap.Resolve(model.CatalogAdmissionType, a.AdmTypeCode); !ok {
		return nil, apperrors.NotFound(msgAdmTypeNotFound)
	}

	if a.PatientCode == 0 {
		return nil, apperrors.MissingField("patient", msgPatientRequired)
	}
	patient, err := v.patients.Get(ctx, a.PatientCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgPatientNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	for _, ref := range optionalRefs(a) {
		if _, ok := snap.ResolveOptional(ref.kind, ref.code); !ok {
			return nil, apperrors.NotFound(ref.message)
		}
	}

	if a.AdmDate.IsZero() {
		return nil, apperrors.MissingField("admission date", msgAdmDateRequired)
	}
	if a.DisDate != nil && a.DisDate.Before(a.AdmDate) {
		return nil, apperrors.Invalid(msgDisDateBeforeAdmDate)
	}

	return patient, nil
}

// ValidateDischarge checks the discharge requirements first, then the full
// reference rules.
func (v *Validator) ValidateDischarge(ctx context.Context, snap *catalog.Snapshot, a *model.Admission) (*model.Patient, error) {
	if blank(a.DiseaseOut1Code) {
		return nil, apperrors.MissingField("disease out 1", msgDiseaseOutRequired)
	}
	if a.DisDate == nil {
		return nil, apperrors.MissingField("discharge date", msgDisDateRequired)
	}
	if a.DisDate.Before(a.AdmDate) {
		return nil, apperrors.Invalid(msgDisDateBeforeAdmDate)
	}
	if blank(a.DisTypeCode) {
		return nil, apperrors.MissingField("discharge type", msgDisTypeRequiredOrGone)
	}
	if _, ok := snap.Resolve(model.CatalogDischargeType, *a.DisTypeCode); !ok {
		return nil, apperrors.NotFound(msgDisTypeRequiredOrGone)
	}

	return v.Validate(ctx, snap, a)
}

func blank(s *string) bool {
	return s == nil || *s == ""
}
