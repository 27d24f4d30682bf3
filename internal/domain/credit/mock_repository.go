package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (_m *MockRepository) Create(ctx context.Context, cr *Credit) (*Credit, error) {
	ret := _m.Called(ctx, cr)

	var r0 *Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByCode(ctx context.Context, creditCode uuid.UUID) (*Credit, error) {
	ret := _m.Called(ctx, creditCode)

	var r0 *Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindAllByCustomer(ctx context.Context, customerID int64) ([]*Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindStalePending(ctx context.Context, asOf time.Time) ([]*Credit, error) {
	ret := _m.Called(ctx, asOf)

	var r0 []*Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateStatus(ctx context.Context, creditID int64, status CreditStatus) error {
	ret := _m.Called(ctx, creditID, status)
	return ret.Error(0)
}
