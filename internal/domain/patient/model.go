package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Only the last four SSN digits are
// ever stored; the full number never enters the system.
type Patient struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	FirstName         string     `db:"first_name" json:"first_name"`
	LastName          string     `db:"last_name" json:"last_name"`
	DateOfBirth       *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender            *string    `db:"gender" json:"gender,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	Email             *string    `db:"email" json:"email,omitempty"`
	AddressLine       *string    `db:"address_line" json:"address_line,omitempty"`
	AddressCity       *string    `db:"address_city" json:"address_city,omitempty"`
	AddressState      *string    `db:"address_state" json:"address_state,omitempty"`
	AddressPostalCode *string    `db:"address_postal_code" json:"address_postal_code,omitempty"`
	SSNLast4          *string    `db:"ssn_last4" json:"ssn_last4,omitempty"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders "First Last", tolerating a missing part.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MaskedSSN renders the stored digits as "***-**-1234", or empty when no
// SSN is on file.
func (p *Patient) MaskedSSN() string {
	if p.SSNLast4 == nil || *p.SSNLast4 == "" {
		return ""
	}
	return "***-**-" + *p.SSNLast4
}
