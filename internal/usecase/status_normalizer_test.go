package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

func TestNormalizePaymentStatus(t *testing.T) {
	tests := []struct {
		raw       string
		want      entity.PaymentStatus
		wantKnown bool
	}{
		{"CONFIRMED", entity.PaymentStatusCompleted, true},
		{"RECEIVED", entity.PaymentStatusCompleted, true},
		{"PAID", entity.PaymentStatusCompleted, true},
		{"received", entity.PaymentStatusCompleted, true},
		{"OVERDUE", entity.PaymentStatusPending, true},
		{"CANCELED", entity.PaymentStatusFailed, true},
		{"DECLINED", entity.PaymentStatusFailed, true},
		{"FAILED", entity.PaymentStatusFailed, true},
		{"REFUNDED", entity.PaymentStatusRefunded, true},
		{"CHARGEBACK_REQUESTED", entity.PaymentStatusPending, false},
		{"", entity.PaymentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := NormalizePaymentStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestNormalizeCheckoutStatus(t *testing.T) {
	tests := []struct {
		raw       string
		want      entity.CheckoutStatus
		wantKnown bool
	}{
		{"CANCELED", entity.CheckoutStatusCanceled, true},
		{"Cancelled", entity.CheckoutStatusCanceled, true},
		{"EXPIRED", entity.CheckoutStatusCanceled, true},
		{"ACTIVE", entity.CheckoutStatusPending, true},
		{"RECEIVED", entity.CheckoutStatusCompleted, true},
		{"PAID", entity.CheckoutStatusCompleted, true},
		{"REFUNDED", entity.CheckoutStatusRefunded, true},
		{"DECLINED", entity.CheckoutStatusFailed, true},
		{"SOMETHING_NEW", entity.CheckoutStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := NormalizeCheckoutStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.want == entity.CheckoutStatusCanceled, got.IsTerminal())
		})
	}
}
