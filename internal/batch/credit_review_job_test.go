package batch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"credit-application/internal/batch"
	"credit-application/internal/domain/credit"
	"credit-application/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCreditService struct {
	mock.Mock
}

var _ credit.CreditService = (*mockCreditService)(nil)

func (_m *mockCreditService) RequestCredit(ctx context.Context, params credit.RequestParams) (*credit.Credit, error) {
	ret := _m.Called(ctx, params)

	var r0 *credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}
	return r0, ret.Error(1)
}

func (_m *mockCreditService) ListByCustomer(ctx context.Context, customerID int64) ([]*credit.Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*credit.Credit)
	}
	return r0, ret.Error(1)
}

func (_m *mockCreditService) GetByCode(ctx context.Context, customerID int64, creditCode uuid.UUID) (*credit.Credit, error) {
	ret := _m.Called(ctx, customerID, creditCode)

	var r0 *credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}
	return r0, ret.Error(1)
}

func (_m *mockCreditService) Approve(ctx context.Context, creditCode uuid.UUID) error {
	ret := _m.Called(ctx, creditCode)
	return ret.Error(0)
}

func (_m *mockCreditService) Reject(ctx context.Context, creditCode uuid.UUID) error {
	ret := _m.Called(ctx, creditCode)
	return ret.Error(0)
}

func staleCredit(id int64) *credit.Credit {
	return &credit.Credit{
		ID:                   id,
		CreditCode:           uuid.New(),
		CreditValue:          decimal.NewFromInt(10000),
		DayFirstInstallment:  time.Now().AddDate(0, 0, -1),
		NumberOfInstallments: 12,
		Status:               credit.StatusPending,
		CustomerID:           1,
	}
}

func setupJobTest() (*credit.MockRepository, *mockCreditService, *batch.CreditReviewJob) {
	mockRepo := new(credit.MockRepository)
	mockSvc := new(mockCreditService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := batch.NewCreditReviewJob(mockRepo, mockSvc, logger)
	return mockRepo, mockSvc, job
}

func TestCreditReviewJob_RejectsStalePending(t *testing.T) {
	mockRepo, mockSvc, job := setupJobTest()
	ctx := context.Background()

	first := staleCredit(1)
	second := staleCredit(2)

	mockRepo.On("FindStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]*credit.Credit{first, second}, nil).Once()
	mockSvc.On("Reject", ctx, first.CreditCode).Return(nil).Once()
	mockSvc.On("Reject", ctx, second.CreditCode).Return(nil).Once()

	err := job.Run(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockSvc.AssertExpectations(t)
}

func TestCreditReviewJob_NothingToDo(t *testing.T) {
	mockRepo, mockSvc, job := setupJobTest()
	ctx := context.Background()

	mockRepo.On("FindStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]*credit.Credit{}, nil).Once()

	err := job.Run(ctx)

	assert.NoError(t, err)
	mockSvc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything)
}

func TestCreditReviewJob_ConcurrentDecisionIsSkipped(t *testing.T) {
	mockRepo, mockSvc, job := setupJobTest()
	ctx := context.Background()

	cr := staleCredit(1)

	mockRepo.On("FindStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]*credit.Credit{cr}, nil).Once()
	mockSvc.On("Reject", ctx, cr.CreditCode).
		Return(fmt.Errorf("%w: credit already decided", apperrors.ErrConflict)).Once()

	err := job.Run(ctx)

	assert.NoError(t, err)
	mockSvc.AssertExpectations(t)
}

func TestCreditReviewJob_RepositoryFailureAbortsJob(t *testing.T) {
	mockRepo, mockSvc, job := setupJobTest()
	ctx := context.Background()

	dbError := errors.New("connection refused")
	mockRepo.On("FindStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, dbError).Once()

	err := job.Run(ctx)

	assert.ErrorIs(t, err, dbError)
	mockSvc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything)
}

func TestCreditReviewJob_RejectFailuresSurface(t *testing.T) {
	mockRepo, mockSvc, job := setupJobTest()
	ctx := context.Background()

	cr := staleCredit(1)

	mockRepo.On("FindStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]*credit.Credit{cr}, nil).Once()
	mockSvc.On("Reject", ctx, cr.CreditCode).
		Return(errors.New("db down")).Once()

	err := job.Run(ctx)

	assert.Error(t, err)
	mockSvc.AssertExpectations(t)
}
