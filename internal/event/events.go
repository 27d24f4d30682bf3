package event

import "time"

type CustomerEventPayload struct {
	CustomerID int64     `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

type CreditEventPayload struct {
	CreditID             int64     `json:"creditId"`
	CreditCode           string    `json:"creditCode"`
	CustomerID           int64     `json:"customerId"`
	CreditValue          string    `json:"creditValue"`
	NumberOfInstallments int       `json:"numberOfInstallments"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
}

type CreditRequestedEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Payload   CreditEventPayload `json:"payload"`
}

type CreditStatusChangedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CreditCode string    `json:"creditCode"`
	CustomerID int64     `json:"customerId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
}
