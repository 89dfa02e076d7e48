package shared

import (
	"github.com/google/uuid"
)

// Actor identifies who performs an operation and in which tenant.
// It is passed explicitly to every application operation.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// NewActor creates an actor
func NewActor(tenantID, userID uuid.UUID, name string) Actor {
	return Actor{UserID: userID, TenantID: tenantID, Name: name}
}

// SystemActor is the actor recorded for changes made by background jobs
func SystemActor(tenantID uuid.UUID) Actor {
	return Actor{TenantID: tenantID, Name: "system"}
}

// Validate checks that the actor carries a tenant and a user
func (a Actor) Validate() error {
	if a.TenantID == uuid.Nil {
		return NewValidationError("actor tenant is required")
	}
	if a.UserID == uuid.Nil {
		return NewValidationError("actor user is required")
	}
	return nil
}

// String returns the display name, falling back to the user ID
func (a Actor) String() string {
	if a.Name != "" {
		return a.Name
	}
	return a.UserID.String()
}
