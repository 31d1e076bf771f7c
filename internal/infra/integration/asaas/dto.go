package asaas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateCustomerInput struct {
	Name              string
	Email             string
	CpfCnpj           string
	Phone             string
	MobilePhone       string
	ExternalReference string // ID do lead no nosso banco
}

// CheckoutStatus é o estado externo já validado de uma sessão de checkout.
// Customer != nil: o formulário foi preenchido.
// Payment != nil: existe ao menos uma tentativa de pagamento.
type CheckoutStatus struct {
	Status   string
	Customer *CheckoutCustomer
	Payment  *CheckoutPayment
	Raw      json.RawMessage
}

type CheckoutCustomer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"cpfCnpj"`
}

type CheckoutPayment struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Value       decimal.Decimal `json:"value"`
	BillingType string          `json:"billingType"`
	DueDate     string          `json:"dueDate"`
	Description string          `json:"description"`
}

// --- PAYLOADS internos ---

type createCustomerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	CpfCnpj              string `json:"cpfCnpj,omitempty"`
	Phone                string `json:"phone,omitempty"`
	MobilePhone          string `json:"mobilePhone,omitempty"`
	ExternalReference    string `json:"externalReference,omitempty"`
	NotificationDisabled bool   `json:"notificationDisabled"`
}

type customerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type checkoutResponse struct {
	Status   string            `json:"status"`
	Customer *CheckoutCustomer `json:"customer"`
	Payment  *CheckoutPayment  `json:"payment"`
}

// parseCheckoutStatus coage o JSON frouxo do Asaas no contrato tipado.
// Customer sem email e payment sem id são descartados.
func parseCheckoutStatus(raw json.RawMessage) (*CheckoutStatus, error) {
	var resp checkoutResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("erro decode checkout asaas: %w", err)
	}

	out := &CheckoutStatus{
		Status: strings.ToUpper(strings.TrimSpace(resp.Status)),
		Raw:    raw,
	}

	if resp.Customer != nil && strings.TrimSpace(resp.Customer.Email) != "" {
		cust := *resp.Customer
		cust.Email = strings.TrimSpace(cust.Email)
		out.Customer = &cust
	}

	if resp.Payment != nil && strings.TrimSpace(resp.Payment.ID) != "" {
		pay := *resp.Payment
		pay.Status = strings.ToUpper(strings.TrimSpace(pay.Status))
		out.Payment = &pay
	}

	return out, nil
}
