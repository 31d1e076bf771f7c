package entity

import (
	"context"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
)

type Lead struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone,omitempty"`
	Document            string     `json:"document,omitempty"` // CPF/CNPJ
	Status              LeadStatus `json:"status"`
	Segment             string     `json:"segment,omitempty"`
	ConvertedToClientID *string    `json:"converted_to_client_id,omitempty"`
	ExternalCustomerID  *string    `json:"external_customer_id,omitempty"` // cus_xxxx no Asaas
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// SweepCandidate é um checkout que ainda pode ter sido pago sem callback.
type SweepCandidate struct {
	CheckoutLinkID     string
	ExternalCheckoutID string
	CheckoutStatus     CheckoutStatus
	LeadID             string
	LeadEmail          string
}

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Lead, error)
	// MarkConverted só altera leads ainda não convertidos. Retorna false se
	// outro processo já converteu.
	MarkConverted(ctx context.Context, leadID, clientID string) (bool, error)
	ListSweepCandidates(ctx context.Context, limit int) ([]SweepCandidate, error)
}
