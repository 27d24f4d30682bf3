package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"credit-application/internal/domain/customer"
	"credit-application/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func setupTest() (*customer.MockCustomerRepository, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, nil, logger)
	return mockRepo, service
}

func registerParams() customer.RegisterParams {
	return customer.RegisterParams{
		FirstName: "Ray",
		LastName:  "Ramos",
		CPF:       "09697494061",
		Income:    decimal.NewFromFloat(10000.0),
		Email:     "ray@gmail.com",
		Password:  "12345",
		Address:   customer.Address{ZipCode: "123456", Street: "Rua das Flores"},
	}
}

func TestCustomerService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()
		params := registerParams()
		expectedID := int64(1)

		mockRepo.On("Save", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			match := c.FirstName == params.FirstName &&
				c.LastName == params.LastName &&
				c.CPF == params.CPF &&
				c.Email == params.Email &&
				c.Address == params.Address &&
				c.Income.Equal(params.Income)
			if match {
				c.ID = expectedID
			}
			return match
		})).Return(nil).Once()

		created, err := service.Register(ctx, params)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		if created != nil {
			assert.Equal(t, expectedID, created.ID)
			assert.NotEqual(t, params.Password, created.PasswordHash, "password must never be stored as given")
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(params.Password)))
		}
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - duplicate cpf or email", func(t *testing.T) {
		mockRepo, service := setupTest()
		conflict := apperrors.ErrAlreadyExists

		mockRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(conflict).Once()

		created, err := service.Register(ctx, registerParams())

		assert.Error(t, err)
		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - repository save failure", func(t *testing.T) {
		mockRepo, service := setupTest()
		dbError := errors.New("database connection failed")

		mockRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(dbError).Once()

		created, err := service.Register(ctx, registerParams())

		assert.Error(t, err)
		assert.Nil(t, created)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "failed to save new customer")
		mockRepo.AssertExpectations(t)
	})
}

func TestCustomerService_Get(t *testing.T) {
	ctx := context.Background()
	customerID := int64(42)

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()
		expected := &customer.Customer{ID: customerID, FirstName: "Ray", LastName: "Ramos"}

		mockRepo.On("FindByID", ctx, customerID).Return(expected, nil).Once()

		cust, err := service.Get(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - not found", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("FindByID", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		cust, err := service.Get(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - repository failure", func(t *testing.T) {
		mockRepo, service := setupTest()
		dbError := errors.New("connection refused")

		mockRepo.On("FindByID", ctx, customerID).Return(nil, dbError).Once()

		cust, err := service.Get(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, dbError)
		mockRepo.AssertExpectations(t)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	customerID := int64(7)
	params := customer.UpdateParams{
		FirstName: "Manoel",
		LastName:  "Gomes",
		Income:    decimal.NewFromInt(10000),
		Address:   customer.Address{ZipCode: "123456", Street: "Goias"},
	}

	t.Run("Success - only mutable fields change", func(t *testing.T) {
		mockRepo, service := setupTest()
		existing := &customer.Customer{
			ID:           customerID,
			FirstName:    "Ray",
			LastName:     "Ramos",
			CPF:          "09697494061",
			Email:        "ray@gmail.com",
			PasswordHash: "hash",
			Income:       decimal.NewFromInt(5000),
			Address:      customer.Address{ZipCode: "123456", Street: "Rua das Flores"},
		}

		mockRepo.On("FindByID", ctx, customerID).Return(existing, nil).Once()
		mockRepo.On("Save", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.ID == customerID &&
				c.FirstName == "Manoel" &&
				c.LastName == "Gomes" &&
				c.Income.Equal(params.Income) &&
				c.Address.Street == "Goias" &&
				c.CPF == "09697494061" &&
				c.Email == "ray@gmail.com" &&
				c.PasswordHash == "hash"
		})).Return(nil).Once()

		updated, err := service.Update(ctx, customerID, params)

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - customer not found", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("FindByID", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		updated, err := service.Update(ctx, customerID, params)

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	customerID := int64(9)

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("Delete", ctx, customerID).Return(nil).Once()

		err := service.Delete(ctx, customerID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - not found", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("Delete", ctx, customerID).Return(apperrors.ErrNotFound).Once()

		err := service.Delete(ctx, customerID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - dependent credits", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("Delete", ctx, customerID).Return(apperrors.ErrConflict).Once()

		err := service.Delete(ctx, customerID)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}
