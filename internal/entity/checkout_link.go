package entity

import (
	"context"
	"time"
)

type CheckoutLink struct {
	ID                 string         `json:"id"`
	ExternalCheckoutID string         `json:"external_checkout_id"`
	LeadID             string         `json:"lead_id"`
	ClientID           *string        `json:"client_id,omitempty"`
	Status             CheckoutStatus `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type CheckoutLinkRepositoryInterface interface {
	FindByExternalID(ctx context.Context, externalCheckoutID string) (*CheckoutLink, error)
	// LockByExternalID serializa reconciliações do mesmo checkout (SELECT ... FOR UPDATE).
	LockByExternalID(ctx context.Context, externalCheckoutID string) (*CheckoutLink, error)
	// LinkClient grava client_id somente se ainda for nulo e sempre sobrescreve o status.
	// Retorna o client_id que ficou no checkout.
	LinkClient(ctx context.Context, id, clientID string, status CheckoutStatus) (string, error)
}
