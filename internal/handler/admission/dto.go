package admission

import (
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// AdmissionDTO is the wire shape of an admission, used for requests and
// responses alike. Reference fields carry catalog codes.
type AdmissionDTO struct {
	ID          int        `json:"id"`
	Admitted    *int       `json:"admitted,omitempty" binding:"omitempty,oneof=0 1"`
	Type        string     `json:"type" binding:"max=1"`
	WardCode    string     `json:"wardCode" binding:"max=3"`
	YProg       int        `json:"yProg" binding:"min=0"`
	PatientCode int        `json:"patientCode" binding:"min=0"`
	AdmDate     *time.Time `json:"admDate,omitempty"`
	AdmTypeCode string     `json:"admTypeCode" binding:"max=10"`
	FHU         *string    `json:"fhu,omitempty"`

	DiseaseInCode   *string `json:"diseaseInCode,omitempty"`
	DiseaseOut1Code *string `json:"diseaseOut1Code,omitempty"`
	DiseaseOut2Code *string `json:"diseaseOut2Code,omitempty"`
	DiseaseOut3Code *string `json:"diseaseOut3Code,omitempty"`

	OperationCode *string    `json:"operationCode,omitempty"`
	OpDate        *time.Time `json:"opDate,omitempty"`
	OpResult      *string    `json:"opResult,omitempty"`

	DisDate     *time.Time `json:"disDate,omitempty"`
	DisTypeCode *string    `json:"disTypeCode,omitempty"`

	Note      *string    `json:"note,omitempty"`
	TransUnit *float64   `json:"transUnit,omitempty"`
	VisitDate *time.Time `json:"visitDate,omitempty"`

	PregTreatmentTypeCode *string    `json:"pregTreatmentTypeCode,omitempty"`
	DeliveryDate          *time.Time `json:"deliveryDate,omitempty"`
	DeliveryTypeCode      *string    `json:"deliveryTypeCode,omitempty"`
	DeliveryResultCode    *string    `json:"deliveryResultCode,omitempty"`
	Weight                *float64   `json:"weight,omitempty" binding:"omitempty,gte=0"`
	CtrlDate1             *time.Time `json:"ctrlDate1,omitempty"`
	CtrlDate2             *time.Time `json:"ctrlDate2,omitempty"`
	AbortDate             *time.Time `json:"abortDate,omitempty"`

	UserID *string `json:"userID,omitempty"`
}

type PatientDTO struct {
	Code       int        `json:"code"`
	FirstName  string     `json:"firstName"`
	SecondName string     `json:"secondName"`
	Name       string     `json:"name"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
	Sex        string     `json:"sex"`
	City       string     `json:"city"`
}

type AdmittedPatientDTO struct {
	Patient   PatientDTO   `json:"patient"`
	Admission AdmissionDTO `json:"admission"`
}

func toModel(d *AdmissionDTO) *model.Admission {
	a := &model.Admission{
		ID:                    d.ID,
		Type:                  d.Type,
		WardCode:              d.WardCode,
		YProg:                 d.YProg,
		PatientCode:           d.PatientCode,
		AdmTypeCode:           d.AdmTypeCode,
		FHU:                   d.FHU,
		DiseaseInCode:         d.DiseaseInCode,
		DiseaseOut1Code:       d.DiseaseOut1Code,
		DiseaseOut2Code:       d.DiseaseOut2Code,
		DiseaseOut3Code:       d.DiseaseOut3Code,
		OperationCode:         d.OperationCode,
		OpDate:                d.OpDate,
		OpResult:              d.OpResult,
		DisDate:               d.DisDate,
		DisTypeCode:           d.DisTypeCode,
		Note:                  d.Note,
		TransUnit:             d.TransUnit,
		VisitDate:             d.VisitDate,
		PregTreatmentTypeCode: d.PregTreatmentTypeCode,
		DeliveryDate:          d.DeliveryDate,
		DeliveryTypeCode:      d.DeliveryTypeCode,
		DeliveryResultCode:    d.DeliveryResultCode,
		Weight:                d.Weight,
		CtrlDate1:             d.CtrlDate1,
		CtrlDate2:             d.CtrlDate2,
		AbortDate:             d.AbortDate,
		UserID:                d.UserID,
	}
	if d.Admitted != nil {
		a.Admitted = *d.Admitted
	}
	if d.AdmDate != nil {
		a.AdmDate = *d.AdmDate
	}
	if a.Type == "" {
		a.Type = "I"
	}
	return a
}

func fromModel(a *model.Admission) AdmissionDTO {
	admitted := a.Admitted
	admDate := a.AdmDate
	return AdmissionDTO{
		ID:                    a.ID,
		Admitted:              &admitted,
		Type:                  a.Type,
		WardCode:              a.WardCode,
		YProg:                 a.YProg,
		PatientCode:           a.PatientCode,
		AdmDate:               &admDate,
		AdmTypeCode:           a.AdmTypeCode,
		FHU:                   a.FHU,
		DiseaseInCode:         a.DiseaseInCode,
		DiseaseOut1Code:       a.DiseaseOut1Code,
		DiseaseOut2Code:       a.DiseaseOut2Code,
		DiseaseOut3Code:       a.DiseaseOut3Code,
		OperationCode:         a.OperationCode,
		OpDate:                a.OpDate,
		OpResult:              a.OpResult,
		DisDate:               a.DisDate,
		DisTypeCode:           a.DisTypeCode,
		Note:                  a.Note,
		TransUnit:             a.TransUnit,
		VisitDate:             a.VisitDate,
		PregTreatmentTypeCode: a.PregTreatmentTypeCode,
		DeliveryDate:          a.DeliveryDate,
		DeliveryTypeCode:      a.DeliveryTypeCode,
		DeliveryResultCode:    a.DeliveryResultCode,
		Weight:                a.Weight,
		CtrlDate1:             a.CtrlDate1,
		CtrlDate2:             a.CtrlDate2,
		AbortDate:             a.AbortDate,
		UserID:                a.UserID,
	}
}

func fromModels(list []*model.Admission) []AdmissionDTO {
	out := make([]AdmissionDTO, 0, len(list))
	for _, a := range list {
		out = append(out, fromModel(a))
	}
	return out
}

func fromAdmittedPatients(list []*model.AdmittedPatient) []AdmittedPatientDTO {
	out := make([]AdmittedPatientDTO, 0, len(list))
	for _, ap := range list {
		p := ap.Patient
		out = append(out, AdmittedPatientDTO{
			Patient: PatientDTO{
				Code:       p.Code,
				FirstName:  p.FirstName,
				SecondName: p.SecondName,
				Name:       p.FullName(),
				BirthDate:  p.BirthDate,
				Sex:        p.Sex,
				City:       p.City,
			},
			Admission: fromModel(&ap.Admission),
		})
	}
	return out
}
