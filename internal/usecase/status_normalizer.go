package usecase

import (
	"strings"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

var paymentStatusMap = map[string]entity.PaymentStatus{
	"CONFIRMED": entity.PaymentStatusCompleted,
	"RECEIVED":  entity.PaymentStatusCompleted,
	"PAID":      entity.PaymentStatusCompleted,
	"OVERDUE":   entity.PaymentStatusPending,
	"PENDING":   entity.PaymentStatusPending,
	"CANCELED":  entity.PaymentStatusFailed,
	"DECLINED":  entity.PaymentStatusFailed,
	"FAILED":    entity.PaymentStatusFailed,
	"REFUNDED":  entity.PaymentStatusRefunded,
}

// NormalizePaymentStatus nunca falha: status desconhecido vira pending e
// known=false, para o chamador registrar o aviso.
func NormalizePaymentStatus(raw string) (entity.PaymentStatus, bool) {
	status, ok := paymentStatusMap[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return entity.PaymentStatusPending, false
	}
	return status, true
}

// NormalizeCheckoutStatus trata o encerramento da sessão (CANCELED, EXPIRED)
// como canceled, sessão aberta como pending e delega o resto ao mapa de pagamentos.
func NormalizeCheckoutStatus(raw string) (entity.CheckoutStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CANCELED", "CANCELLED", "EXPIRED":
		return entity.CheckoutStatusCanceled, true
	case "ACTIVE":
		return entity.CheckoutStatusPending, true
	}

	status, known := NormalizePaymentStatus(raw)
	return entity.CheckoutStatus(status), known
}
