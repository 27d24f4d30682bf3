package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-application/internal/domain/customer"
	"credit-application/internal/event"
	"credit-application/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequestParams struct {
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	CustomerID           int64
}

type CreditService interface {
	// RequestCredit re-resolves the owning customer before persisting;
	// an unresolved customer id fails with apperrors.ErrNotFound.
	RequestCredit(ctx context.Context, params RequestParams) (*Credit, error)

	// ListByCustomer returns all credits owned by the customer; an empty
	// list is not an error.
	ListByCustomer(ctx context.Context, customerID int64) ([]*Credit, error)

	// GetByCode fails with apperrors.ErrNotFound when the code is
	// unresolved and with apperrors.ErrForbidden when the credit belongs
	// to a different customer.
	GetByCode(ctx context.Context, customerID int64, creditCode uuid.UUID) (*Credit, error)

	Approve(ctx context.Context, creditCode uuid.UUID) error
	Reject(ctx context.Context, creditCode uuid.UUID) error
}

var _ CreditService = (*creditService)(nil)

type creditService struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.Publisher
	logger          *slog.Logger
}

func NewCreditService(repo Repository, customerService customer.CustomerService, publisher event.Publisher, logger *slog.Logger) CreditService {
	if repo == nil {
		panic("credit repository cannot be nil")
	}
	if customerService == nil {
		panic("customer service cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCreditService, using default stderr handler")
	}

	return &creditService{
		repo:            repo,
		customerService: customerService,
		pub:             publisher,
		logger:          logger.With(slog.String("component", "creditService")),
	}
}

func newCreditEventPayload(cr *Credit) event.CreditEventPayload {
	return event.CreditEventPayload{
		CreditID:             cr.ID,
		CreditCode:           cr.CreditCode.String(),
		CustomerID:           cr.CustomerID,
		CreditValue:          cr.CreditValue.String(),
		NumberOfInstallments: cr.NumberOfInstallments,
		Status:               string(cr.Status),
		CreatedAt:            cr.CreatedAt,
	}
}

func (s *creditService) RequestCredit(ctx context.Context, params RequestParams) (*Credit, error) {
	s.logger.InfoContext(ctx, "Attempting to request new credit", slog.Int64("customerID", params.CustomerID))

	owner, err := s.customerService.Get(ctx, params.CustomerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Credit request rejected, customer does not exist")
			return nil, fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, params.CustomerID)
		}
		s.logger.ErrorContext(ctx, "Failed to resolve customer for credit request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer %d: %w", params.CustomerID, err)
	}

	newCredit, err := NewCredit(params.CreditValue, params.DayFirstInstallment, params.NumberOfInstallments, owner.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Credit invariants rejected the request", slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Calling repository Create")
	created, err := s.repo.Create(ctx, newCredit)
	if err != nil {
		// The FK can still break if the customer is deleted between the
		// lookup above and the insert.
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer disappeared before credit insert completed")
			return nil, fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, params.CustomerID)
		}
		s.logger.ErrorContext(ctx, "Repository failed to create credit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create credit: %w", err)
	}

	requestedEvent := event.CreditRequestedEvent{
		Timestamp: time.Now(),
		Payload:   newCreditEventPayload(created),
	}
	if pubErr := s.pub.PublishCreditRequested(ctx, requestedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Credit created, but FAILED to publish request event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully created credit", slog.String("creditCode", created.CreditCode.String()))
	return created, nil
}

func (s *creditService) ListByCustomer(ctx context.Context, customerID int64) ([]*Credit, error) {
	s.logger.InfoContext(ctx, "Attempting to list credits by customer", slog.Int64("customerID", customerID))

	credits, err := s.repo.FindAllByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing credits", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list credits for customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully listed credits", slog.Int("count", len(credits)))
	return credits, nil
}

func (s *creditService) GetByCode(ctx context.Context, customerID int64, creditCode uuid.UUID) (*Credit, error) {
	s.logger.InfoContext(ctx, "Attempting to get credit by code", slog.Int64("customerID", customerID))

	cr, err := s.repo.FindByCode(ctx, creditCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Credit not found by repository")
			return nil, fmt.Errorf("%w: credit code %s", apperrors.ErrNotFound, creditCode)
		}
		s.logger.ErrorContext(ctx, "Repository error finding credit by code", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get credit by code: %w", err)
	}

	if !cr.BelongsTo(customerID) {
		// Vague on purpose: the response must not confirm the code exists
		// under another customer.
		s.logger.WarnContext(ctx, "Cross-ownership credit access denied",
			slog.Int64("ownerID", cr.CustomerID), slog.Int64("requesterID", customerID))
		return nil, fmt.Errorf("%w: credit is not accessible for this customer", apperrors.ErrForbidden)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved credit by code")
	return cr, nil
}

func (s *creditService) Approve(ctx context.Context, creditCode uuid.UUID) error {
	return s.transition(ctx, creditCode, (*Credit).Approve)
}

func (s *creditService) Reject(ctx context.Context, creditCode uuid.UUID) error {
	return s.transition(ctx, creditCode, (*Credit).Reject)
}

func (s *creditService) transition(ctx context.Context, creditCode uuid.UUID, apply func(*Credit) error) error {
	s.logger.InfoContext(ctx, "Attempting credit status transition", slog.String("creditCode", creditCode.String()))

	cr, err := s.repo.FindByCode(ctx, creditCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Credit not found for status transition")
			return fmt.Errorf("%w: credit code %s", apperrors.ErrNotFound, creditCode)
		}
		s.logger.ErrorContext(ctx, "Repository error finding credit for transition", slog.Any("error", err))
		return fmt.Errorf("failed to load credit %s: %w", creditCode, err)
	}

	oldStatus := cr.Status
	if err := apply(cr); err != nil {
		s.logger.WarnContext(ctx, "Status transition rejected", slog.Any("error", err))
		return err
	}

	if err := s.repo.UpdateStatus(ctx, cr.ID, cr.Status); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// A competing decision landed between our read and the update.
			s.logger.WarnContext(ctx, "Status transition lost to a concurrent decision")
			return fmt.Errorf("%w: credit %s was decided concurrently", apperrors.ErrConflict, creditCode)
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Credit disappeared before status update completed")
			return fmt.Errorf("%w: credit code %s", apperrors.ErrNotFound, creditCode)
		}
		s.logger.ErrorContext(ctx, "Repository failed to update credit status", slog.Any("error", err))
		return fmt.Errorf("failed to update status for credit %s: %w", creditCode, err)
	}

	changedEvent := event.CreditStatusChangedEvent{
		Timestamp:  time.Now(),
		CreditCode: cr.CreditCode.String(),
		CustomerID: cr.CustomerID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(cr.Status),
	}
	if pubErr := s.pub.PublishCreditStatusChanged(ctx, changedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Status updated, but FAILED to publish status change event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully transitioned credit status",
		slog.String("from", string(oldStatus)), slog.String("to", string(cr.Status)))
	return nil
}
