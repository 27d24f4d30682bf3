package credit_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"credit-application/internal/domain/credit"
	"credit-application/internal/domain/customer"
	"credit-application/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func (_m *MockCustomerService) Register(ctx context.Context, params customer.RegisterParams) (*customer.Customer, error) {
	ret := _m.Called(ctx, params)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Get(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Update(ctx context.Context, customerID int64, params customer.UpdateParams) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, params)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Delete(ctx context.Context, customerID int64) error {
	ret := _m.Called(ctx, customerID)
	return ret.Error(0)
}

func setupCreditTest() (*credit.MockRepository, *MockCustomerService, credit.CreditService) {
	mockRepo := new(credit.MockRepository)
	mockCustomers := new(MockCustomerService)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := credit.NewCreditService(mockRepo, mockCustomers, nil, logger)
	return mockRepo, mockCustomers, service
}

func requestParams(customerID int64) credit.RequestParams {
	return credit.RequestParams{
		CreditValue:          decimal.NewFromInt(50000),
		DayFirstInstallment:  time.Now().AddDate(0, 1, 0),
		NumberOfInstallments: 24,
		CustomerID:           customerID,
	}
}

func TestCreditService_RequestCredit(t *testing.T) {
	ctx := context.Background()
	customerID := int64(1)

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupCreditTest()
		params := requestParams(customerID)

		saved := &credit.Credit{
			ID:                   10,
			CreditCode:           uuid.New(),
			CreditValue:          params.CreditValue,
			DayFirstInstallment:  params.DayFirstInstallment,
			NumberOfInstallments: params.NumberOfInstallments,
			Status:               credit.StatusPending,
			CustomerID:           customerID,
		}

		mockCustomers.On("Get", ctx, customerID).Return(&customer.Customer{ID: customerID}, nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *credit.Credit) bool {
			return c.CustomerID == customerID &&
				c.Status == credit.StatusPending &&
				c.NumberOfInstallments == 24 &&
				c.CreditCode != uuid.Nil &&
				c.CreditValue.Equal(params.CreditValue)
		})).Return(saved, nil).Once()

		created, err := service.RequestCredit(ctx, params)

		assert.NoError(t, err)
		assert.Equal(t, saved, created)
		mockRepo.AssertExpectations(t)
		mockCustomers.AssertExpectations(t)
	})

	t.Run("Error - customer not found", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupCreditTest()

		mockCustomers.On("Get", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		created, err := service.RequestCredit(ctx, requestParams(customerID))

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - invariants rejected before persistence", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupCreditTest()
		params := requestParams(customerID)
		params.NumberOfInstallments = 49

		mockCustomers.On("Get", ctx, customerID).Return(&customer.Customer{ID: customerID}, nil).Once()

		created, err := service.RequestCredit(ctx, params)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - customer deleted before insert", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupCreditTest()

		mockCustomers.On("Get", ctx, customerID).Return(&customer.Customer{ID: customerID}, nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*credit.Credit")).Return(nil, apperrors.ErrNotFound).Once()

		created, err := service.RequestCredit(ctx, requestParams(customerID))

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestCreditService_ListByCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(3)

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		expected := []*credit.Credit{
			{ID: 1, CustomerID: customerID, CreditCode: uuid.New()},
			{ID: 2, CustomerID: customerID, CreditCode: uuid.New()},
		}

		mockRepo.On("FindAllByCustomer", ctx, customerID).Return(expected, nil).Once()

		credits, err := service.ListByCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expected, credits)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - no credits yields empty list, not an error", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()

		mockRepo.On("FindAllByCustomer", ctx, customerID).Return([]*credit.Credit{}, nil).Once()

		credits, err := service.ListByCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Empty(t, credits)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - repository failure", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		dbError := errors.New("connection refused")

		mockRepo.On("FindAllByCustomer", ctx, customerID).Return(nil, dbError).Once()

		credits, err := service.ListByCustomer(ctx, customerID)

		assert.Nil(t, credits)
		assert.ErrorIs(t, err, dbError)
		mockRepo.AssertExpectations(t)
	})
}

func TestCreditService_GetByCode(t *testing.T) {
	ctx := context.Background()
	ownerID := int64(5)
	code := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		expected := &credit.Credit{ID: 1, CreditCode: code, CustomerID: ownerID}

		mockRepo.On("FindByCode", ctx, code).Return(expected, nil).Once()

		cr, err := service.GetByCode(ctx, ownerID, code)

		assert.NoError(t, err)
		assert.Equal(t, expected, cr)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - unknown code", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()

		mockRepo.On("FindByCode", ctx, code).Return(nil, apperrors.ErrNotFound).Once()

		cr, err := service.GetByCode(ctx, ownerID, code)

		assert.Nil(t, cr)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - wrong owner yields forbidden, not the credit", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		foreign := &credit.Credit{ID: 1, CreditCode: code, CustomerID: ownerID}

		mockRepo.On("FindByCode", ctx, code).Return(foreign, nil).Once()

		cr, err := service.GetByCode(ctx, ownerID+1, code)

		assert.Nil(t, cr)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.NotContains(t, err.Error(), code.String(), "forbidden error must not echo the credit code")
		mockRepo.AssertExpectations(t)
	})
}

func TestCreditService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	code := uuid.New()

	t.Run("Approve pending credit", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		pending := &credit.Credit{ID: 4, CreditCode: code, CustomerID: 1, Status: credit.StatusPending}

		mockRepo.On("FindByCode", ctx, code).Return(pending, nil).Once()
		mockRepo.On("UpdateStatus", ctx, int64(4), credit.StatusApproved).Return(nil).Once()

		err := service.Approve(ctx, code)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Reject pending credit", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		pending := &credit.Credit{ID: 4, CreditCode: code, CustomerID: 1, Status: credit.StatusPending}

		mockRepo.On("FindByCode", ctx, code).Return(pending, nil).Once()
		mockRepo.On("UpdateStatus", ctx, int64(4), credit.StatusRejected).Return(nil).Once()

		err := service.Reject(ctx, code)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - already decided", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		decided := &credit.Credit{ID: 4, CreditCode: code, CustomerID: 1, Status: credit.StatusApproved}

		mockRepo.On("FindByCode", ctx, code).Return(decided, nil).Once()

		err := service.Reject(ctx, code)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error - concurrent decision loses at persistence", func(t *testing.T) {
		mockRepo, _, service := setupCreditTest()
		// Two deciders each load the credit while it is still PENDING.
		firstRead := &credit.Credit{ID: 7, CreditCode: code, CustomerID: 1, Status: credit.StatusPending}
		secondRead := &credit.Credit{ID: 7, CreditCode: code, CustomerID: 1, Status: credit.StatusPending}

		mockRepo.On("FindByCode", ctx, code).Return(firstRead, nil).Once()
		mockRepo.On("FindByCode", ctx, code).Return(secondRead, nil).Once()
		mockRepo.On("UpdateStatus", ctx, int64(7), credit.StatusApproved).Return(nil).Once()
		mockRepo.On("UpdateStatus", ctx, int64(7), credit.StatusRejected).
			Return(fmt.Errorf("%w: credit is already %s", apperrors.ErrConflict, credit.StatusApproved)).Once()

		assert.NoError(t, service.Approve(ctx, code))

		err := service.Reject(ctx, code)

		assert.ErrorIs(t, err, apperrors.ErrConflict, "the losing decision must not overwrite the one that landed first")
		mockRepo.AssertExpectations(t)
	})
}
