package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/usecase"
)

type CheckoutHandler struct {
	Reconciler usecase.Reconciler
	SuccessURL string
	Logger     *zap.Logger
}

func NewCheckoutHandler(reconciler usecase.Reconciler, successURL string, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		Reconciler: reconciler,
		SuccessURL: successURL,
		Logger:     logger,
	}
}

// Success é o retorno do navegador depois do checkout hospedado no Asaas.
// Erros internos não vazam para o usuário.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	checkoutID := strings.TrimSpace(r.URL.Query().Get("checkoutId"))
	if checkoutID == "" {
		writeError(w, http.StatusBadRequest, "checkoutId is required", "")
		return
	}

	res, err := h.Reconciler.Execute(r.Context(), usecase.ReconcileCheckoutInput{
		ExternalCheckoutID: checkoutID,
		Source:             usecase.SourceSuccessCallback,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCheckoutNotFound):
			writeError(w, http.StatusNotFound, "checkout not found", "")
		case errors.Is(err, usecase.ErrInvalidCheckout):
			writeError(w, http.StatusBadRequest, "checkoutId is required", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process checkout", "Não foi possível confirmar sua matrícula agora. Tente novamente em instantes.")
		}
		return
	}

	if res.Pending {
		writeError(w, http.StatusBadRequest, "form not completed", "")
		return
	}

	http.Redirect(w, r, h.SuccessURL, http.StatusFound)
}

type notifyRequest struct {
	CheckoutID string `json:"checkoutId"`
	Event      string `json:"event"`
	Checkout   *struct {
		ID string `json:"id"`
	} `json:"checkout,omitempty"`
}

func (req notifyRequest) checkoutID() string {
	if id := strings.TrimSpace(req.CheckoutID); id != "" {
		return id
	}
	if req.Checkout != nil {
		return strings.TrimSpace(req.Checkout.ID)
	}
	return ""
}

type notifyResponse struct {
	Success bool                          `json:"success"`
	Pending bool                          `json:"pending,omitempty"`
	Result  *usecase.ReconciliationResult `json:"result,omitempty"`
}

// Notify é o webhook do gateway: 200 sempre que o processamento foi
// concluído (inclusive pending), 500 para o gateway reenviar.
func (h *CheckoutHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err.Error())
		return
	}

	checkoutID := req.checkoutID()
	if checkoutID == "" {
		writeError(w, http.StatusBadRequest, "checkoutId is required", "")
		return
	}

	res, err := h.Reconciler.Execute(r.Context(), usecase.ReconcileCheckoutInput{
		ExternalCheckoutID: checkoutID,
		Source:             usecase.SourceNotifyCallback,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrCheckoutNotFound) {
			writeError(w, http.StatusNotFound, "checkout not found", checkoutID)
			return
		}
		h.Logger.Error("falha no webhook de checkout",
			zap.String("checkout_id", checkoutID),
			zap.String("event", req.Event),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to process notification", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, notifyResponse{Success: true, Pending: res.Pending, Result: res})
}
