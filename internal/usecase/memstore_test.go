package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-conversions/internal/entity"
	"github.com/xavierca1/ligue-conversions/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-conversions/internal/infra/queue"
)

// memStore imita o Postgres: mesmas chaves únicas, transação serializada e
// rollback por snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	leads            map[string]entity.Lead         // por id
	links            map[string]entity.CheckoutLink // por external_checkout_id
	clients          map[string]entity.Client       // por email
	payments         map[string]entity.Payment      // por external_payment_id
	leadActivities   []entity.Activity
	clientActivities []entity.Activity

	// beforeClientInsert roda uma vez dentro de Clients.Create, antes da
	// checagem de unicidade, para simular outra reconciliação concorrente.
	beforeClientInsert func(s *memStore)
	failLeadActivity   error
}

func newMemStore() *memStore {
	return &memStore{
		leads:    map[string]entity.Lead{},
		links:    map[string]entity.CheckoutLink{},
		clients:  map[string]entity.Client{},
		payments: map[string]entity.Payment{},
	}
}

func (s *memStore) addLead(l entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.ID] = l
}

func (s *memStore) addLink(l entity.CheckoutLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[l.ExternalCheckoutID] = l
}

func (s *memStore) lead(id string) entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}

func (s *memStore) link(externalID string) entity.CheckoutLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links[externalID]
}

func (s *memStore) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *memStore) paymentList() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	return out
}

func (s *memStore) activityCounts() (lead, client int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leadActivities), len(s.clientActivities)
}

type memSnapshot struct {
	leads            map[string]entity.Lead
	links            map[string]entity.CheckoutLink
	clients          map[string]entity.Client
	payments         map[string]entity.Payment
	leadActivities   []entity.Activity
	clientActivities []entity.Activity
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		leads:            cloneMap(s.leads),
		links:            cloneMap(s.links),
		clients:          cloneMap(s.clients),
		payments:         cloneMap(s.payments),
		leadActivities:   append([]entity.Activity(nil), s.leadActivities...),
		clientActivities: append([]entity.Activity(nil), s.clientActivities...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = snap.leads
	s.links = snap.links
	s.clients = snap.clients
	s.payments = snap.payments
	s.leadActivities = snap.leadActivities
	s.clientActivities = snap.clientActivities
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- entity.UnitOfWork ---

func (s *memStore) Repositories() entity.Repositories {
	return entity.Repositories{
		Leads:         memLeads{s},
		Clients:       memClients{s},
		CheckoutLinks: memLinks{s},
		Payments:      memPayments{s},
		Activities:    memActivities{s},
	}
}

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context, repos entity.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s.Repositories()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memLeads struct{ s *memStore }

func (r memLeads) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &l, nil
}

func (r memLeads) MarkConverted(_ context.Context, leadID, clientID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[leadID]
	if !ok || l.Status == entity.LeadStatusConverted {
		return false, nil
	}
	l.Status = entity.LeadStatusConverted
	l.ConvertedToClientID = &clientID
	r.s.leads[leadID] = l
	return true, nil
}

func (r memLeads) ListSweepCandidates(_ context.Context, limit int) ([]entity.SweepCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.SweepCandidate
	for _, link := range r.s.links {
		lead := r.s.leads[link.LeadID]
		if lead.IsConverted() || link.Status.IsTerminal() || link.ClientID != nil {
			continue
		}
		out = append(out, entity.SweepCandidate{
			CheckoutLinkID:     link.ID,
			ExternalCheckoutID: link.ExternalCheckoutID,
			CheckoutStatus:     link.Status,
			LeadID:             lead.ID,
			LeadEmail:          lead.Email,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memClients struct{ s *memStore }

func (r memClients) FindByEmail(_ context.Context, email string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[entity.NormalizeEmail(email)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &c, nil
}

func (r memClients) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if hook := r.s.beforeClientInsert; hook != nil {
		r.s.beforeClientInsert = nil
		hook(r.s)
	}
	key := entity.NormalizeEmail(c.Email)
	if _, exists := r.s.clients[key]; exists {
		return entity.ErrDuplicateKey
	}
	r.s.clients[key] = *c
	return nil
}

type memLinks struct{ s *memStore }

func (r memLinks) FindByExternalID(_ context.Context, externalCheckoutID string) (*entity.CheckoutLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.links[externalCheckoutID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &l, nil
}

func (r memLinks) LockByExternalID(ctx context.Context, externalCheckoutID string) (*entity.CheckoutLink, error) {
	return r.FindByExternalID(ctx, externalCheckoutID)
}

func (r memLinks) LinkClient(_ context.Context, id, clientID string, status entity.CheckoutStatus) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, l := range r.s.links {
		if l.ID != id {
			continue
		}
		if l.ClientID == nil {
			cid := clientID
			l.ClientID = &cid
		}
		l.Status = status
		r.s.links[k] = l
		return *l.ClientID, nil
	}
	return "", entity.ErrNotFound
}

type memPayments struct{ s *memStore }

func (r memPayments) FindByExternalID(_ context.Context, externalPaymentID string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[externalPaymentID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &p, nil
}

func (r memPayments) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.payments[p.ExternalPaymentID]; exists {
		return entity.ErrDuplicateKey
	}
	r.s.payments[p.ExternalPaymentID] = *p
	return nil
}

func (r memPayments) UpdateStatus(_ context.Context, id string, status entity.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, p := range r.s.payments {
		if p.ID == id {
			p.Status = status
			r.s.payments[k] = p
			return nil
		}
	}
	return entity.ErrNotFound
}

type memActivities struct{ s *memStore }

func (r memActivities) AppendLeadActivity(_ context.Context, a *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLeadActivity != nil {
		return r.s.failLeadActivity
	}
	r.s.leadActivities = append(r.s.leadActivities, *a)
	return nil
}

func (r memActivities) AppendClientActivity(_ context.Context, a *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clientActivities = append(r.s.clientActivities, *a)
	return nil
}

// --- mocks ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetCheckoutStatus(ctx context.Context, externalCheckoutID string) (*asaas.CheckoutStatus, error) {
	args := m.Called(ctx, externalCheckoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asaas.CheckoutStatus), args.Error(1)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, input asaas.CreateCustomerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishConversion(ctx context.Context, payload queue.ConversionPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Execute(ctx context.Context, input ReconcileCheckoutInput) (*ReconciliationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReconciliationResult), args.Error(1)
}

type fakeMetrics struct {
	mu              sync.Mutex
	fallbacks       []string
	integrationErrs []string
	outcomes        []string
}

func (f *fakeMetrics) RecordReconciliation(source, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, source+":"+outcome)
}

func (f *fakeMetrics) RecordStatusFallback(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbacks = append(f.fallbacks, raw)
}

func (f *fakeMetrics) RecordIntegrationError(service string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.integrationErrs = append(f.integrationErrs, service)
}
