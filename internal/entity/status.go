package entity

// PaymentStatus é a taxonomia fechada de pagamentos.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CheckoutStatus espelha o status normalizado da sessão de checkout.
type CheckoutStatus string

const (
	CheckoutStatusPending   CheckoutStatus = "pending"
	CheckoutStatusCompleted CheckoutStatus = "completed"
	CheckoutStatusFailed    CheckoutStatus = "failed"
	CheckoutStatusRefunded  CheckoutStatus = "refunded"
	CheckoutStatusCanceled  CheckoutStatus = "canceled"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCanceled
}
