package role

import (
	"github.com/go-playground/validator/v10"

	"github.com/jnanisc/backend/core"
)

// Role is a named, non-hierarchical grouping of permission labels.
// Identities reference roles by name; a dangling reference grants nothing.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// NewRole contains information needed to create or replace a Role.
type NewRole struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"omitempty,max=255"`
	Permissions []string `json:"permissions"`
}

func (nr *NewRole) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}
