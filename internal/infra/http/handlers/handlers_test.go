package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/entity"
	"github.com/xavierca1/ligue-conversions/internal/usecase"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Execute(ctx context.Context, input usecase.ReconcileCheckoutInput) (*usecase.ReconciliationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ReconciliationResult), args.Error(1)
}

func newCheckoutRouter(rec usecase.Reconciler) http.Handler {
	h := NewCheckoutHandler(rec, "https://portal.escola.com/matricula/ok", zap.NewNop())
	r := chi.NewRouter()
	r.Get("/checkout/success", h.Success)
	r.Post("/checkout/notify", h.Notify)
	return r
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSuccess_RedirectsWhenConverted(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, usecase.ReconcileCheckoutInput{ExternalCheckoutID: "chk_1", Source: usecase.SourceSuccessCallback}).
		Return(&usecase.ReconciliationResult{ClientID: "c1", CheckoutStatus: entity.CheckoutStatusCompleted}, nil)

	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout/success?checkoutId=chk_1", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://portal.escola.com/matricula/ok", rr.Header().Get("Location"))
}

func TestSuccess_PendingIsBadRequest(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, mock.Anything).Return(&usecase.ReconciliationResult{Pending: true}, nil)

	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout/success?checkoutId=chk_1", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "form not completed", decodeBody(t, rr)["error"])
}

func TestSuccess_NotFound(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, mock.Anything).Return(nil, usecase.ErrCheckoutNotFound)

	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout/success?checkoutId=chk_x", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "checkout not found", decodeBody(t, rr)["error"])
}

func TestSuccess_MissingParam(t *testing.T) {
	rec := new(MockReconciler)

	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout/success", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestSuccess_InternalErrorDoesNotLeak(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, mock.Anything).
		Return(nil, &usecase.TechnicalError{Code: "DATABASE_ERROR", Message: "pq: relation \"clients\" does not exist"})

	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout/success?checkoutId=chk_1", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "relation")
}

func TestNotify_OKIncludingPending(t *testing.T) {
	for _, pending := range []bool{false, true} {
		rec := new(MockReconciler)
		rec.On("Execute", mock.Anything, usecase.ReconcileCheckoutInput{ExternalCheckoutID: "chk_1", Source: usecase.SourceNotifyCallback}).
			Return(&usecase.ReconciliationResult{Pending: pending}, nil)

		body := `{"checkoutId":"chk_1","event":"CHECKOUT_PAID"}`
		rr := httptest.NewRecorder()
		newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/checkout/notify", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["success"])
	}
}

func TestNotify_AcceptsNestedCheckoutObject(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, usecase.ReconcileCheckoutInput{ExternalCheckoutID: "chk_2", Source: usecase.SourceNotifyCallback}).
		Return(&usecase.ReconciliationResult{}, nil)

	body := `{"event":"CHECKOUT_PAID","checkout":{"id":"chk_2"}}`
	rr := httptest.NewRecorder()
	newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/checkout/notify", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	rec.AssertExpectations(t)
}

func TestNotify_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"json inválido", `{`, nil, http.StatusBadRequest, ""},
		{"sem checkoutId", `{"event":"X"}`, nil, http.StatusBadRequest, ""},
		{"não encontrado", `{"checkoutId":"chk_1"}`, usecase.ErrCheckoutNotFound, http.StatusNotFound, "chk_1"},
		{"gateway fora", `{"checkoutId":"chk_1"}`, &usecase.TechnicalError{Code: "GATEWAY_UNAVAILABLE", Message: "payment gateway unavailable", Err: errors.New("timeout")}, http.StatusInternalServerError, "payment gateway unavailable: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := new(MockReconciler)
			if tt.err != nil {
				rec.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rr := httptest.NewRecorder()
			newCheckoutRouter(rec).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/checkout/notify", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, decodeBody(t, rr)["details"])
			}
		})
	}
}

func TestSweepHandler(t *testing.T) {
	leads := new(MockLeadRepository)
	leads.On("ListSweepCandidates", mock.Anything, 5).Return([]entity.SweepCandidate{
		{CheckoutLinkID: "l1", ExternalCheckoutID: "chk_1", LeadID: "7", LeadEmail: "a@x.com"},
	}, nil)
	rec := new(MockReconciler)
	rec.On("Execute", mock.Anything, usecase.ReconcileCheckoutInput{ExternalCheckoutID: "chk_1", Source: usecase.SourceSweep}).
		Return(&usecase.ReconciliationResult{ClientID: "c1", IsNewClient: true, LeadID: "7", LeadEmail: "a@x.com", CheckoutID: "chk_1", CheckoutStatus: entity.CheckoutStatusCompleted}, nil)

	h := NewSweepHandler(usecase.NewSweepLeadsUseCase(leads, rec, zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	r.Post("/admin/leads/sweep", h.Handle)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/leads/sweep?limit=5", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out usecase.SweepLeadsOutput
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "c1", out.Conversions[0].ClientID)
	assert.Equal(t, "chk_1", out.Conversions[0].Checkout.ID)
	assert.Equal(t, entity.CheckoutStatusCompleted, out.Conversions[0].Checkout.Status)
}

func TestSweepHandler_InvalidLimit(t *testing.T) {
	h := NewSweepHandler(usecase.NewSweepLeadsUseCase(new(MockLeadRepository), new(MockReconciler), nil), zap.NewNop())

	rr := httptest.NewRecorder()
	h.Handle(rr, httptest.NewRequest(http.MethodPost, "/admin/leads/sweep?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConn struct{ closed bool }

func (f fakeConn) IsClosed() bool { return f.closed }

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(fakePinger{}, fakeConn{}).Handle(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decodeBody(t, rr)["status"])

	rr = httptest.NewRecorder()
	NewHealthHandler(fakePinger{err: errors.New("down")}, nil).Handle(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", decodeBody(t, rr)["status"])
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkConverted(ctx context.Context, leadID, clientID string) (bool, error) {
	args := m.Called(ctx, leadID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) ListSweepCandidates(ctx context.Context, limit int) ([]entity.SweepCandidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SweepCandidate), args.Error(1)
}
