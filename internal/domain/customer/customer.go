package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a value object embedded in Customer; it has no identity or
// lifecycle of its own and is flattened into the customer row.
type Address struct {
	ZipCode string `json:"zipCode"`
	Street  string `json:"street"`
}

type Customer struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	CPF          string          `json:"cpf"`
	Income       decimal.Decimal `json:"income"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Address      Address         `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func NewCustomer(firstName, lastName, cpf string, income decimal.Decimal, email, passwordHash string, address Address) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:    firstName,
		LastName:     lastName,
		CPF:          cpf,
		Income:       income,
		Email:        email,
		PasswordHash: passwordHash,
		Address:      address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyUpdate mutates the fields a customer is allowed to change after
// registration. CPF, email and credentials are immutable.
func (c *Customer) ApplyUpdate(firstName, lastName string, income decimal.Decimal, address Address) {
	c.FirstName = firstName
	c.LastName = lastName
	c.Income = income
	c.Address = address
	c.UpdatedAt = time.Now()
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
