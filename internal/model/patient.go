package model

import (
	"strings"
	"time"
)

// Patient is owned by the registry; admissions only read it.
type Patient struct {
	Code       int        `db:"code" json:"code"`
	FirstName  string     `db:"first_name" json:"first_name"`
	SecondName string     `db:"second_name" json:"second_name"`
	Name       string     `db:"name" json:"name"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex        string     `db:"sex" json:"sex"`
	City       string     `db:"city" json:"city"`
	Deleted    bool       `db:"deleted" json:"-"`
}

// FullName joins first and second name, falling back to Name.
func (p *Patient) FullName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.SecondName)
	if full == "" {
		return p.Name
	}
	return full
}
