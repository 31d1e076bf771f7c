package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentTypeCheckout = "checkout"

type Payment struct {
	ID                string          `json:"id"`
	ClientID          string          `json:"client_id"`
	Type              string          `json:"type"`
	Status            PaymentStatus   `json:"status"`
	Value             decimal.Decimal `json:"value"`
	PaymentMethod     string          `json:"payment_method"` // PIX, CREDIT_CARD, BOLETO
	ExternalPaymentID string          `json:"external_payment_id"`
	ExternalPayload   json.RawMessage `json:"external_payload,omitempty"`
	Description       string          `json:"description,omitempty"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func NewPayment(clientID, externalPaymentID string, status PaymentStatus, value decimal.Decimal, method string, payload json.RawMessage) *Payment {
	return &Payment{
		ID:                uuid.New().String(),
		ClientID:          clientID,
		Type:              PaymentTypeCheckout,
		Status:            status,
		Value:             value,
		PaymentMethod:     method,
		ExternalPaymentID: externalPaymentID,
		ExternalPayload:   payload,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

type PaymentRepositoryInterface interface {
	FindByExternalID(ctx context.Context, externalPaymentID string) (*Payment, error)
	// Create retorna ErrDuplicateKey quando external_payment_id já existe.
	Create(ctx context.Context, p *Payment) error
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) error
}
