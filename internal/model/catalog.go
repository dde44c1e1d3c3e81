package model

// CatalogKind names one of the reference catalogs an admission points into.
type CatalogKind string

const (
	CatalogWard                  CatalogKind = "ward"
	CatalogAdmissionType         CatalogKind = "admission_type"
	CatalogDisease               CatalogKind = "disease"
	CatalogDischargeType         CatalogKind = "discharge_type"
	CatalogOperation             CatalogKind = "operation"
	CatalogPregnantTreatmentType CatalogKind = "pregnant_treatment_type"
	CatalogDeliveryType          CatalogKind = "delivery_type"
	CatalogDeliveryResultType    CatalogKind = "delivery_result_type"
)

// CatalogKinds lists every catalog loaded into a snapshot.
var CatalogKinds = []CatalogKind{
	CatalogWard,
	CatalogAdmissionType,
	CatalogDisease,
	CatalogDischargeType,
	CatalogOperation,
	CatalogPregnantTreatmentType,
	CatalogDeliveryType,
	CatalogDeliveryResultType,
}

// CatalogEntry is a single reference row keyed by its code.
type CatalogEntry struct {
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}
