package services

import "github.com/harentsoaR/doctors-portal/internal/models"

// Identity is the authenticated caller as far as authorization cares.
type Identity struct {
	Email string
	Role  string
}

type ResourceKind string

const (
	ResourceBooking  ResourceKind = "booking"
	ResourceDoctor   ResourceKind = "doctor"
	ResourceUserRole ResourceKind = "user-role"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names what is being accessed. Owner is the email of the patient
// owning a booking and is empty for catalog-wide resources.
type Resource struct {
	Kind  ResourceKind
	Owner string
}

// Authorize returns nil when identity may perform action on resource and
// ErrForbidden otherwise.
//
// Doctors and user roles are admin-only. Bookings belong to their patient:
// only the owner may create, list or read them.
func Authorize(identity Identity, resource Resource, action Action) error {
	if identity.Email == "" {
		return ErrForbidden
	}
	switch resource.Kind {
	case ResourceDoctor, ResourceUserRole:
		if identity.Role == models.RoleAdmin {
			return nil
		}
	case ResourceBooking:
		switch action {
		case ActionCreate, ActionRead:
			if resource.Owner != "" && resource.Owner == identity.Email {
				return nil
			}
		}
	}
	return ErrForbidden
}
