package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/usecase"
)

// Sweeper é implementado por *usecase.SweepLeadsUseCase.
type Sweeper interface {
	Execute(ctx context.Context, input usecase.SweepLeadsInput) (*usecase.SweepLeadsOutput, error)
}

// SweepWorker roda a varredura de leads periodicamente. É o backstop para
// callbacks perdidos.
type SweepWorker struct {
	sweeper      Sweeper
	tickInterval time.Duration
	limit        int
	logger       *zap.Logger
}

func NewSweepWorker(sweeper Sweeper, interval time.Duration, limit int, logger *zap.Logger) *SweepWorker {
	return &SweepWorker{
		sweeper:      sweeper,
		tickInterval: interval,
		limit:        limit,
		logger:       logger,
	}
}

// Start bloqueia até ctx ser cancelado. Intervalo <= 0 desliga o worker.
func (w *SweepWorker) Start(ctx context.Context) {
	if w.tickInterval <= 0 {
		w.logger.Info("sweep worker desligado")
		return
	}

	w.logger.Info("sweep worker iniciado", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker encerrado")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	start := time.Now()

	out, err := w.sweeper.Execute(ctx, usecase.SweepLeadsInput{Limit: w.limit})
	if err != nil {
		w.logger.Error("erro na varredura agendada", zap.Error(err))
		return
	}

	if out.Count > 0 || out.Failed > 0 {
		w.logger.Info("varredura agendada",
			zap.Int("scanned", out.Scanned),
			zap.Int("converted", out.Count),
			zap.Int("failed", out.Failed),
			zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		)
	}
}
