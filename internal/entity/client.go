package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client é o cliente faturável gerado a partir de um lead.
type Client struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone,omitempty"`
	Document           string       `json:"document,omitempty"`
	Status             ClientStatus `json:"status"`
	Segment            string       `json:"segment,omitempty"`
	ExternalCustomerID *string      `json:"external_customer_id,omitempty"`
	CreatedFromLeadID  string       `json:"created_from_lead_id"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// NewClientFromLead monta o cliente com os dados preenchidos no checkout,
// caindo para os dados do lead quando o gateway não devolve o campo.
func NewClientFromLead(lead *Lead, name, email, phone, document string, externalCustomerID *string) (*Client, error) {
	c := &Client{
		ID:                 uuid.New().String(),
		Name:               firstNonEmpty(name, lead.Name),
		Email:              NormalizeEmail(firstNonEmpty(email, lead.Email)),
		Phone:              firstNonEmpty(phone, lead.Phone),
		Document:           firstNonEmpty(document, lead.Document),
		Status:             ClientStatusActive,
		Segment:            lead.Segment,
		ExternalCustomerID: externalCustomerID,
		CreatedFromLeadID:  lead.ID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Validate() error {
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.CreatedFromLeadID == "" {
		return errors.New("created_from_lead_id is required")
	}
	return nil
}

// NormalizeEmail é a chave de unicidade de clientes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type ClientRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*Client, error)
	// Create retorna ErrDuplicateKey quando o email já existe.
	Create(ctx context.Context, c *Client) error
}
