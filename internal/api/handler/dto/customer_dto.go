package dto

import (
	"regexp"
	"strings"

	"credit-application/internal/domain/customer"
	"credit-application/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type CreateCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	CPF       string           `json:"cpf"`
	Income    *decimal.Decimal `json:"income"`
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

func (r *CreateCustomerRequest) Validate() error {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, apperrors.FieldError{Field: "firstName", Message: "Invalid input: first name cannot be empty"})
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, apperrors.FieldError{Field: "lastName", Message: "Invalid input: last name cannot be empty"})
	}
	if !isValidCPF(r.CPF) {
		errs = append(errs, apperrors.FieldError{Field: "cpf", Message: "Invalid CPF"})
	}
	if r.Income == nil {
		errs = append(errs, apperrors.FieldError{Field: "income", Message: "Invalid input: income cannot be null"})
	} else if r.Income.IsNegative() {
		errs = append(errs, apperrors.FieldError{Field: "income", Message: "Invalid input: income cannot be negative"})
	}
	if !emailPattern.MatchString(r.Email) {
		errs = append(errs, apperrors.FieldError{Field: "email", Message: "Invalid email"})
	}
	if len(r.Password) < 6 {
		errs = append(errs, apperrors.FieldError{Field: "password", Message: "Invalid input: password must have at least 6 characters"})
	}
	if strings.TrimSpace(r.ZipCode) == "" {
		errs = append(errs, apperrors.FieldError{Field: "zipCode", Message: "Invalid input: zip code cannot be empty"})
	}
	if strings.TrimSpace(r.Street) == "" {
		errs = append(errs, apperrors.FieldError{Field: "street", Message: "Invalid input: street cannot be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Income    *decimal.Decimal `json:"income"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

func (r *UpdateCustomerRequest) Validate() error {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, apperrors.FieldError{Field: "firstName", Message: "Invalid input: first name cannot be empty"})
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, apperrors.FieldError{Field: "lastName", Message: "Invalid input: last name cannot be empty"})
	}
	if r.Income == nil {
		errs = append(errs, apperrors.FieldError{Field: "income", Message: "Invalid input: income cannot be null"})
	} else if r.Income.IsNegative() {
		errs = append(errs, apperrors.FieldError{Field: "income", Message: "Invalid input: income cannot be negative"})
	}
	if strings.TrimSpace(r.ZipCode) == "" {
		errs = append(errs, apperrors.FieldError{Field: "zipCode", Message: "Invalid input: zip code cannot be empty"})
	}
	if strings.TrimSpace(r.Street) == "" {
		errs = append(errs, apperrors.FieldError{Field: "street", Message: "Invalid input: street cannot be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CustomerResponse struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	CPF       string          `json:"cpf"`
	Income    decimal.Decimal `json:"income"`
	Email     string          `json:"email"`
	ZipCode   string          `json:"zipCode"`
	Street    string          `json:"street"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:        cust.ID,
		FirstName: cust.FirstName,
		LastName:  cust.LastName,
		CPF:       cust.CPF,
		Income:    cust.Income,
		Email:     cust.Email,
		ZipCode:   cust.Address.ZipCode,
		Street:    cust.Address.Street,
	}
}

// NormalizeCPF strips the usual formatting so the stored value is always
// the bare 11 digits.
func NormalizeCPF(cpf string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(strings.TrimSpace(cpf))
}

// isValidCPF runs the standard CPF check-digit algorithm. Formatted
// (000.000.000-00) and bare inputs are both accepted; sequences of a
// single repeated digit are rejected even though their check digits
// match.
func isValidCPF(cpf string) bool {
	digits := NormalizeCPF(cpf)
	if len(digits) != 11 {
		return false
	}

	allSame := true
	nums := make([]int, 11)
	for i, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
		nums[i] = int(c - '0')
		if nums[i] != nums[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}

	return checkDigit(nums, 9) == nums[9] && checkDigit(nums, 10) == nums[10]
}

func checkDigit(nums []int, length int) int {
	sum := 0
	for i := 0; i < length; i++ {
		sum += nums[i] * (length + 1 - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
