package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/usecase"
)

type SweepHandler struct {
	Sweep  *usecase.SweepLeadsUseCase
	Logger *zap.Logger
}

func NewSweepHandler(sweep *usecase.SweepLeadsUseCase, logger *zap.Logger) *SweepHandler {
	return &SweepHandler{Sweep: sweep, Logger: logger}
}

// Handle dispara a varredura manualmente (POST /admin/leads/sweep?limit=N).
func (h *SweepHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SweepLeadsInput
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", raw)
			return
		}
		input.Limit = limit
	}

	out, err := h.Sweep.Execute(r.Context(), input)
	if err != nil {
		h.Logger.Error("falha na varredura de leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, out)
}
