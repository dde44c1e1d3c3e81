package model

type VaccineType struct {
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

type Vaccine struct {
	Code            string `db:"code" json:"code"`
	Description     string `db:"description" json:"description"`
	VaccineTypeCode string `db:"vaccine_type_code" json:"vaccine_type_code"`
	// populated on reads from the joined vaccine_types row
	VaccineTypeDescription string `db:"vaccine_type_description" json:"vaccine_type_description,omitempty"`
	Timestamps
}
