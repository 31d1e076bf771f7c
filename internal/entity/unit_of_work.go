package entity

import "context"

// Repositories agrupa os repositórios usados pela reconciliação. Dentro de
// UnitOfWork.Do todos compartilham a mesma transação.
type Repositories struct {
	Leads         LeadRepositoryInterface
	Clients       ClientRepositoryInterface
	CheckoutLinks CheckoutLinkRepositoryInterface
	Payments      PaymentRepositoryInterface
	Activities    ActivityRepositoryInterface
}

type UnitOfWork interface {
	// Repositories devolve repositórios fora de transação (leituras avulsas).
	Repositories() Repositories
	// Do executa fn numa única transação: commit se fn retornar nil, rollback caso contrário.
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
