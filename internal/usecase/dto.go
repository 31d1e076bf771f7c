package usecase

import "github.com/xavierca1/ligue-conversions/internal/entity"

type ReconcileSource string

const (
	SourceSuccessCallback ReconcileSource = "success_callback"
	SourceNotifyCallback  ReconcileSource = "notify_callback"
	SourceSweep           ReconcileSource = "sweep"
)

type ReconcileCheckoutInput struct {
	ExternalCheckoutID string
	Source             ReconcileSource
}

type ReconciliationResult struct {
	Pending         bool                  `json:"pending"`
	ClientID        string                `json:"clientId,omitempty"`
	ClientName      string                `json:"clientName,omitempty"`
	ClientEmail     string                `json:"clientEmail,omitempty"`
	IsNewClient     bool                  `json:"isNewClient"`
	LeadConverted   bool                  `json:"leadConverted"`
	PaymentRecorded bool                  `json:"paymentRecorded"`
	LeadID          string                `json:"leadId"`
	LeadEmail       string                `json:"leadEmail"`
	CheckoutID      string                `json:"checkoutId"`
	CheckoutStatus  entity.CheckoutStatus `json:"checkoutStatus"`
}

type SweepLeadsInput struct {
	Limit int
}

type SweepCheckout struct {
	ID     string                `json:"id"`
	Status entity.CheckoutStatus `json:"status"`
}

type SweepConversion struct {
	LeadID      string        `json:"leadId"`
	LeadEmail   string        `json:"leadEmail"`
	ClientID    string        `json:"clientId"`
	IsNewClient bool          `json:"isNewClient"`
	Checkout    SweepCheckout `json:"checkout"`
}

// SweepItemResult é o desfecho por lead: converted, pending ou failed.
type SweepItemResult struct {
	LeadID     string `json:"leadId"`
	LeadEmail  string `json:"leadEmail"`
	CheckoutID string `json:"checkoutId"`
	Outcome    string `json:"outcome"`
	ClientID   string `json:"clientId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SweepLeadsOutput struct {
	Count       int               `json:"count"`
	Scanned     int               `json:"scanned"`
	Pending     int               `json:"pending"`
	Failed      int               `json:"failed"`
	Conversions []SweepConversion `json:"conversions"`
	Results     []SweepItemResult `json:"results"`
}
