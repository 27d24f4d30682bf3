package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the credit and fills in its generated id and
	// timestamps. A broken customer foreign key surfaces as
	// apperrors.ErrNotFound.
	Create(ctx context.Context, credit *Credit) (*Credit, error)

	// FindByCode returns apperrors.ErrNotFound when no credit carries the
	// code.
	FindByCode(ctx context.Context, creditCode uuid.UUID) (*Credit, error)

	// FindAllByCustomer returns the customer's credits ordered by id; an
	// empty slice when there are none.
	FindAllByCustomer(ctx context.Context, customerID int64) ([]*Credit, error)

	// FindStalePending returns PENDING credits whose first installment
	// date is on or before asOf.
	FindStalePending(ctx context.Context, asOf time.Time) ([]*Credit, error)

	// UpdateStatus persists a status transition decided on the entity.
	// The update only lands while the row is still PENDING; a concurrent
	// decision surfaces as apperrors.ErrConflict and a missing row as
	// apperrors.ErrNotFound.
	UpdateStatus(ctx context.Context, creditID int64, status CreditStatus) error
}
