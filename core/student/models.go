package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
)

// Student is owned by exactly one teacher (OwnerID = credential store user id).
// Rows are append-only from this service's perspective.
type Student struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewStudent contains information needed to add a Student to the roster.
type NewStudent struct {
	Name  string `json:"name" validate:"required"`
	Grade string `json:"grade"`
	Notes string `json:"notes"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	return validate.Struct(ns)
}
