package models

import (
	"time"
)

// DateLayout is the wire format for birth dates.
const DateLayout = "2006-01-02"

// Persona represents a single person record
type Persona struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	BirthDate *string   `json:"birth_date"`
	IsActive  bool      `json:"is_active"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonaCreate is the payload for creating a new Persona.
// IsActive is a pointer so an omitted value can default to true.
type PersonaCreate struct {
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	BirthDate *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	IsActive  *bool   `json:"is_active"`
	Notes     *string `json:"notes"`
}

// PersonaUpdate is the sparse payload for partial updates. Every field is
// a pointer: nil means "not supplied, keep the stored value".
type PersonaUpdate struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	BirthDate *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	IsActive  *bool   `json:"is_active"`
	Notes     *string `json:"notes"`
}

// ActivePersona is the reduced projection returned by the active report
type ActivePersona struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	IsActive bool    `json:"is_active"`
}

// AgeStatistics holds min/max/average age over personas with a birth date
type AgeStatistics struct {
	Min int     `json:"min"`
	Max int     `json:"max"`
	Avg float64 `json:"avg"`
}

// PoblarRequest is the payload for the synthetic-data populate endpoint
type PoblarRequest struct {
	Cantidad int `json:"cantidad" binding:"required,gt=0,lte=1000"`
}

// NewPersona builds a Persona from a create payload, applying the
// is_active default
func NewPersona(in *PersonaCreate) *Persona {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return &Persona{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		BirthDate: in.BirthDate,
		IsActive:  active,
		Notes:     in.Notes,
	}
}
