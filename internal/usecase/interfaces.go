package usecase

import (
	"context"

	"github.com/xavierca1/ligue-conversions/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-conversions/internal/infra/queue"
)

// CheckoutGateway é o subconjunto do cliente Asaas usado na reconciliação.
type CheckoutGateway interface {
	GetCheckoutStatus(ctx context.Context, externalCheckoutID string) (*asaas.CheckoutStatus, error)
	CreateCustomer(ctx context.Context, input asaas.CreateCustomerInput) (string, error)
}

type ConversionPublisher interface {
	PublishConversion(ctx context.Context, payload queue.ConversionPayload) error
}

// MetricsRecorder é implementado pelo middleware de métricas (Prometheus).
type MetricsRecorder interface {
	RecordReconciliation(source, outcome string)
	RecordStatusFallback(raw string)
	RecordIntegrationError(service string)
}

// Reconciler é o contrato consumido pelos handlers HTTP e pela varredura.
type Reconciler interface {
	Execute(ctx context.Context, input ReconcileCheckoutInput) (*ReconciliationResult, error)
}

type noopMetrics struct{}

func (noopMetrics) RecordReconciliation(string, string) {}
func (noopMetrics) RecordStatusFallback(string) {}
func (noopMetrics) RecordIntegrationError(string) {}
