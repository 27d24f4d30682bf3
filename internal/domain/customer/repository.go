package customer

import (
	"context"
)

type CustomerRepository interface {
	// Save inserts when the customer has no ID yet, otherwise updates the
	// mutable fields. Unique-constraint violations on cpf or email surface
	// as apperrors.ErrAlreadyExists.
	Save(ctx context.Context, customer *Customer) error

	// FindByID returns apperrors.ErrNotFound when no row matches.
	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// Delete removes the customer atomically: the row is locked, dependent
	// credit applications are checked, then the row is removed. Returns
	// apperrors.ErrNotFound when the id does not resolve and
	// apperrors.ErrConflict when dependent credits exist.
	Delete(ctx context.Context, customerID int64) error
}
