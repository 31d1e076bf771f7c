package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

const DefaultSweepLimit = 500

type SweepLeadsUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Reconciler Reconciler
	Logger     *zap.Logger
}

func NewSweepLeadsUseCase(leads entity.LeadRepositoryInterface, reconciler Reconciler, logger *zap.Logger) *SweepLeadsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepLeadsUseCase{
		Leads:      leads,
		Reconciler: reconciler,
		Logger:     logger,
	}
}

// Execute reconcilia, um a um, os checkouts que nunca receberam callback.
// Falha em um item não interrompe o lote.
func (uc *SweepLeadsUseCase) Execute(ctx context.Context, input SweepLeadsInput) (*SweepLeadsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSweepLimit
	}

	candidates, err := uc.Leads.ListSweepCandidates(ctx, limit)
	if err != nil {
		return nil, technical("DATABASE_ERROR", "erro ao listar checkouts pendentes", err)
	}

	out := &SweepLeadsOutput{
		Scanned:     len(candidates),
		Conversions: []SweepConversion{},
		Results:     make([]SweepItemResult, 0, len(candidates)),
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			uc.Logger.Warn("varredura interrompida", zap.Int("processed", len(out.Results)))
			break
		}

		item := SweepItemResult{
			LeadID:     c.LeadID,
			LeadEmail:  c.LeadEmail,
			CheckoutID: c.ExternalCheckoutID,
		}

		res, err := uc.Reconciler.Execute(ctx, ReconcileCheckoutInput{
			ExternalCheckoutID: c.ExternalCheckoutID,
			Source:             SourceSweep,
		})
		switch {
		case err != nil:
			item.Outcome = "failed"
			item.Error = err.Error()
			out.Failed++
			uc.Logger.Warn("falha ao reconciliar checkout na varredura",
				zap.String("checkout_id", c.ExternalCheckoutID),
				zap.String("lead_id", c.LeadID),
				zap.Error(err),
			)
		case res.Pending:
			item.Outcome = "pending"
			out.Pending++
		default:
			item.Outcome = "converted"
			item.ClientID = res.ClientID
			out.Conversions = append(out.Conversions, SweepConversion{
				LeadID:      res.LeadID,
				LeadEmail:   res.LeadEmail,
				ClientID:    res.ClientID,
				IsNewClient: res.IsNewClient,
				Checkout: SweepCheckout{
					ID:     res.CheckoutID,
					Status: res.CheckoutStatus,
				},
			})
		}

		out.Results = append(out.Results, item)
	}

	out.Count = len(out.Conversions)
	uc.Logger.Info("varredura concluída",
		zap.Int("scanned", out.Scanned),
		zap.Int("converted", out.Count),
		zap.Int("pending", out.Pending),
		zap.Int("failed", out.Failed),
	)
	return out, nil
}
