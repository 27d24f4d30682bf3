package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-application/internal/event"
	"credit-application/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const customerNotFoundMsg = "Customer not found by repository"

type RegisterParams struct {
	FirstName string
	LastName  string
	CPF       string
	Income    decimal.Decimal
	Email     string
	Password  string
	Address   Address
}

type UpdateParams struct {
	FirstName string
	LastName  string
	Income    decimal.Decimal
	Address   Address
}

type CustomerService interface {
	Register(ctx context.Context, params RegisterParams) (*Customer, error)
	Get(ctx context.Context, customerID int64) (*Customer, error)
	Update(ctx context.Context, customerID int64, params UpdateParams) (*Customer, error)
	Delete(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.Publisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, publisher event.Publisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func newCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.ID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
}

func (s *customerService) Register(ctx context.Context, params RegisterParams) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash customer password", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternalServer)
	}

	cust := NewCustomer(
		params.FirstName,
		params.LastName,
		params.CPF,
		params.Income,
		params.Email,
		string(passwordHash),
		params.Address,
	)

	s.logger.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Registration rejected, cpf or email already taken")
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   newCustomerEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer registered, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully registered new customer", slog.Int64("customerID", cust.ID))
	return cust, nil
}

func (s *customerService) Get(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFoundMsg)
			return nil, fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) Update(ctx context.Context, customerID int64, params UpdateParams) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for update")
			return nil, fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	cust.ApplyUpdate(params.FirstName, params.LastName, params.Income, params.Address)

	s.logger.InfoContext(ctx, "Calling repository Save to persist update")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save update for customer %d: %w", customerID, err)
	}

	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   newCustomerEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully updated customer")
	return cust, nil
}

func (s *customerService) Delete(ctx context.Context, customerID int64) error {
	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.Int64("customerID", customerID))

	if err := s.repo.Delete(ctx, customerID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			s.logger.WarnContext(ctx, customerNotFoundMsg)
			return fmt.Errorf("%w: customer id %d", apperrors.ErrNotFound, customerID)
		case errors.Is(err, apperrors.ErrConflict):
			s.logger.WarnContext(ctx, "Delete rejected, customer still has credit applications")
			return err
		default:
			s.logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
			return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
		}
	}

	deletedEvent := event.CustomerDeletedEvent{
		Timestamp:  time.Now(),
		CustomerID: customerID,
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}
