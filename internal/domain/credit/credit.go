package credit

import (
	"fmt"
	"time"

	"credit-application/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxInstallments is the hard cap on a credit plan.
const MaxInstallments = 48

type CreditStatus string

const (
	StatusPending  CreditStatus = "PENDING"
	StatusApproved CreditStatus = "APPROVED"
	StatusRejected CreditStatus = "REJECTED"
)

type Credit struct {
	ID                   int64
	CreditCode           uuid.UUID
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	Status               CreditStatus
	CustomerID           int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewCredit builds a PENDING credit application and assigns its credit
// code. The code identifies the credit externally and is never
// reassigned.
func NewCredit(creditValue decimal.Decimal, dayFirstInstallment time.Time, numberOfInstallments int, customerID int64) (*Credit, error) {
	if creditValue.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: credit value must be positive", apperrors.ErrInvalidArgument)
	}
	if numberOfInstallments < 1 || numberOfInstallments > MaxInstallments {
		return nil, fmt.Errorf("%w: number of installments must be between 1 and %d", apperrors.ErrInvalidArgument, MaxInstallments)
	}
	if !dayFirstInstallment.After(time.Now()) {
		return nil, fmt.Errorf("%w: day of first installment must be in the future", apperrors.ErrInvalidArgument)
	}
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id must be positive", apperrors.ErrInvalidArgument)
	}

	now := time.Now()
	return &Credit{
		CreditCode:           uuid.New(),
		CreditValue:          creditValue,
		DayFirstInstallment:  dayFirstInstallment,
		NumberOfInstallments: numberOfInstallments,
		Status:               StatusPending,
		CustomerID:           customerID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Approve moves the application out of PENDING. Decided applications
// stay decided.
func (c *Credit) Approve() error {
	if c.Status != StatusPending {
		return fmt.Errorf("%w: credit %s is already %s", apperrors.ErrConflict, c.CreditCode, c.Status)
	}
	c.Status = StatusApproved
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Credit) Reject() error {
	if c.Status != StatusPending {
		return fmt.Errorf("%w: credit %s is already %s", apperrors.ErrConflict, c.CreditCode, c.Status)
	}
	c.Status = StatusRejected
	c.UpdatedAt = time.Now()
	return nil
}

// BelongsTo reports whether the credit is owned by the given customer.
func (c *Credit) BelongsTo(customerID int64) bool {
	return c.CustomerID == customerID
}
