package model

import (
	"time"
)

const (
	AdmissionDischarged = 0
	AdmissionAdmitted   = 1
)

// Admission is a hospitalization episode. Reference fields hold catalog codes;
// optional ones are nil when absent.
type Admission struct {
	ID          int       `db:"id" json:"id"`
	Admitted    int       `db:"admitted" json:"admitted"`
	Type        string    `db:"type" json:"type"`
	WardCode    string    `db:"ward_code" json:"ward_code"`
	YProg       int       `db:"yprog" json:"yprog"`
	PatientCode int       `db:"patient_code" json:"patient_code"`
	AdmDate     time.Time `db:"adm_date" json:"adm_date"`
	AdmTypeCode string    `db:"adm_type_code" json:"adm_type_code"`
	FHU         *string   `db:"fhu" json:"fhu,omitempty"`

	DiseaseInCode   *string `db:"disease_in_code" json:"disease_in_code,omitempty"`
	DiseaseOut1Code *string `db:"disease_out1_code" json:"disease_out1_code,omitempty"`
	DiseaseOut2Code *string `db:"disease_out2_code" json:"disease_out2_code,omitempty"`
	DiseaseOut3Code *string `db:"disease_out3_code" json:"disease_out3_code,omitempty"`

	OperationCode *string    `db:"operation_code" json:"operation_code,omitempty"`
	OpDate        *time.Time `db:"op_date" json:"op_date,omitempty"`
	OpResult      *string    `db:"op_result" json:"op_result,omitempty"`

	DisDate     *time.Time `db:"dis_date" json:"dis_date,omitempty"`
	DisTypeCode *string    `db:"dis_type_code" json:"dis_type_code,omitempty"`

	Note      *string    `db:"note" json:"note,omitempty"`
	TransUnit *float64   `db:"trans_unit" json:"trans_unit,omitempty"`
	VisitDate *time.Time `db:"visit_date" json:"visit_date,omitempty"`

	PregTreatmentTypeCode *string    `db:"preg_treatment_type_code" json:"preg_treatment_type_code,omitempty"`
	DeliveryDate          *time.Time `db:"delivery_date" json:"delivery_date,omitempty"`
	DeliveryTypeCode      *string    `db:"delivery_type_code" json:"delivery_type_code,omitempty"`
	DeliveryResultCode    *string    `db:"delivery_result_code" json:"delivery_result_code,omitempty"`
	Weight                *float64   `db:"weight" json:"weight,omitempty"`
	CtrlDate1             *time.Time `db:"ctrl_date1" json:"ctrl_date1,omitempty"`
	CtrlDate2             *time.Time `db:"ctrl_date2" json:"ctrl_date2,omitempty"`
	AbortDate             *time.Time `db:"abort_date" json:"abort_date,omitempty"`

	UserID  *string `db:"user_id" json:"user_id,omitempty"`
	Deleted bool    `db:"deleted" json:"-"`
	Timestamps
}

// IsAdmitted reports whether the admission is still open.
func (a *Admission) IsAdmitted() bool {
	return a.Admitted == AdmissionAdmitted
}

// AdmittedPatient pairs a patient with the admission that matched a search.
type AdmittedPatient struct {
	Patient   Patient   `db:"patient" json:"patient"`
	Admission Admission `db:"admission" json:"admission"`
}

// AdmittedPatientFilter narrows the admitted-patients search. Zero value lists
// every currently admitted patient.
type AdmittedPatientFilter struct {
	SearchTerms    string
	AdmissionRange *DateRange
	DischargeRange *DateRange
}
