package dto

import (
	"fmt"
	"time"

	"credit-application/internal/domain/credit"
	"credit-application/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const installmentDateLayout = "2006-01-02"

type CreateCreditRequest struct {
	CreditValue           *decimal.Decimal `json:"creditValue"`
	DayFirstOfInstallment string           `json:"dayFirstOfInstallment"`
	NumberOfInstallments  int              `json:"numberOfInstallments"`
	CustomerID            int64            `json:"customerId"`
}

func (r *CreateCreditRequest) Validate() error {
	var errs apperrors.ValidationErrors

	if r.CreditValue == nil {
		errs = append(errs, apperrors.FieldError{Field: "creditValue", Message: "Invalid input: credit value cannot be null"})
	} else if !r.CreditValue.IsPositive() {
		errs = append(errs, apperrors.FieldError{Field: "creditValue", Message: "Invalid input: credit value must be positive"})
	}

	day, err := r.FirstInstallmentDate()
	if err != nil {
		errs = append(errs, apperrors.FieldError{Field: "dayFirstOfInstallment", Message: "Invalid date, expected format yyyy-MM-dd"})
	} else if !day.After(time.Now()) {
		errs = append(errs, apperrors.FieldError{Field: "dayFirstOfInstallment", Message: "Invalid date: the first installment must be in the future"})
	}

	if r.NumberOfInstallments < 1 {
		errs = append(errs, apperrors.FieldError{Field: "numberOfInstallments", Message: "Invalid input: at least 1 installment is required"})
	} else if r.NumberOfInstallments > credit.MaxInstallments {
		errs = append(errs, apperrors.FieldError{Field: "numberOfInstallments", Message: fmt.Sprintf("The number of installments cannot exceed %d", credit.MaxInstallments)})
	}

	if r.CustomerID <= 0 {
		errs = append(errs, apperrors.FieldError{Field: "customerId", Message: "Invalid input: customer id must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FirstInstallmentDate parses the yyyy-MM-dd payload value.
func (r *CreateCreditRequest) FirstInstallmentDate() (time.Time, error) {
	return time.Parse(installmentDateLayout, r.DayFirstOfInstallment)
}

type CreditResponse struct {
	CreditCode            string          `json:"creditCode"`
	CreditValue           decimal.Decimal `json:"creditValue"`
	NumberOfInstallments  int             `json:"numberOfInstallments"`
	DayFirstOfInstallment string          `json:"dayFirstOfInstallment"`
	Status                string          `json:"status"`
	CustomerID            int64           `json:"customerId"`
}

func NewCreditResponse(cr *credit.Credit) CreditResponse {
	if cr == nil {
		return CreditResponse{}
	}
	return CreditResponse{
		CreditCode:            cr.CreditCode.String(),
		CreditValue:           cr.CreditValue,
		NumberOfInstallments:  cr.NumberOfInstallments,
		DayFirstOfInstallment: cr.DayFirstInstallment.Format(installmentDateLayout),
		Status:                string(cr.Status),
		CustomerID:            cr.CustomerID,
	}
}

// CreditSummaryResponse is the trimmed shape used when listing a
// customer's credits.
type CreditSummaryResponse struct {
	CreditCode           string          `json:"creditCode"`
	CreditValue          decimal.Decimal `json:"creditValue"`
	NumberOfInstallments int             `json:"numberOfInstallments"`
}

func NewCreditSummaryResponse(cr *credit.Credit) CreditSummaryResponse {
	if cr == nil {
		return CreditSummaryResponse{}
	}
	return CreditSummaryResponse{
		CreditCode:           cr.CreditCode.String(),
		CreditValue:          cr.CreditValue,
		NumberOfInstallments: cr.NumberOfInstallments,
	}
}
