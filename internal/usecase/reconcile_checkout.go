package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/entity"
	"github.com/xavierca1/ligue-conversions/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-conversions/internal/infra/queue"
)

type ReconcileCheckoutUseCase struct {
	UoW       entity.UnitOfWork
	Gateway   CheckoutGateway
	Publisher ConversionPublisher
	Metrics   MetricsRecorder
	Logger    *zap.Logger
}

func NewReconcileCheckoutUseCase(
	uow entity.UnitOfWork,
	gateway CheckoutGateway,
	publisher ConversionPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *ReconcileCheckoutUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileCheckoutUseCase{
		UoW:       uow,
		Gateway:   gateway,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
	}
}

// Execute converte o lead dono do checkout em cliente (uma única vez) e
// registra o pagamento. Pode ser chamado quantas vezes for preciso.
func (uc *ReconcileCheckoutUseCase) Execute(ctx context.Context, input ReconcileCheckoutInput) (*ReconciliationResult, error) {
	checkoutID := strings.TrimSpace(input.ExternalCheckoutID)
	if checkoutID == "" {
		return nil, ErrInvalidCheckout
	}

	log := uc.Logger.With(
		zap.String("checkout_id", checkoutID),
		zap.String("source", string(input.Source)),
	)

	result, err := uc.reconcile(ctx, checkoutID, log)
	uc.Metrics.RecordReconciliation(string(input.Source), outcomeOf(result, err))
	if err != nil {
		if IsTechnicalError(err) {
			log.Error("falha na reconciliação", zap.Error(err))
		} else {
			log.Warn("reconciliação rejeitada", zap.Error(err))
		}
		return nil, err
	}

	if result.IsNewClient {
		uc.publishConversion(ctx, input.Source, result, log)
	}
	return result, nil
}

func (uc *ReconcileCheckoutUseCase) reconcile(ctx context.Context, checkoutID string, log *zap.Logger) (*ReconciliationResult, error) {
	repos := uc.UoW.Repositories()

	// 1. Checkout local
	link, err := repos.CheckoutLinks.FindByExternalID(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, technical("DATABASE_ERROR", "erro ao buscar checkout", err)
	}

	lead, err := repos.Leads.FindByID(ctx, link.LeadID)
	if err != nil {
		return nil, technical("DATABASE_ERROR", "erro ao buscar lead do checkout", err)
	}

	log = log.With(zap.String("lead_id", lead.ID))
	result := &ReconciliationResult{
		ClientID:       derefString(link.ClientID),
		LeadID:         lead.ID,
		LeadEmail:      lead.Email,
		CheckoutID:     link.ExternalCheckoutID,
		CheckoutStatus: link.Status,
	}

	// 2. Estado no gateway
	state, err := uc.Gateway.GetCheckoutStatus(ctx, checkoutID)
	if err != nil {
		uc.Metrics.RecordIntegrationError("asaas")
		if errors.Is(err, asaas.ErrUnavailable) {
			return nil, technical(ErrGatewayUnavailable.Code, ErrGatewayUnavailable.Message, err)
		}
		return nil, technical("GATEWAY_ERROR", "erro ao consultar checkout no gateway", err)
	}

	// 3. Formulário não preenchido: nada a gravar
	if state.Customer == nil {
		result.Pending = true
		log.Info("checkout ainda sem cliente no gateway")
		return result, nil
	}

	checkoutStatus := uc.normalizeCheckout(state.Status, log)
	var paymentStatus entity.PaymentStatus
	if state.Payment != nil {
		paymentStatus = uc.normalizePayment(state.Payment.Status, log)
	}

	// O id externo do cliente é resolvido antes da transação para não
	// segurar locks durante uma chamada HTTP.
	email := entity.NormalizeEmail(state.Customer.Email)
	var externalCustomerID *string
	existing, err := repos.Clients.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		externalCustomerID = uc.resolveExternalCustomer(ctx, lead, state.Customer, log)
	case err != nil:
		return nil, technical("DATABASE_ERROR", "erro ao buscar cliente", err)
	default:
		externalCustomerID = existing.ExternalCustomerID
	}

	// 4-7 numa transação só; a partir daqui o cancelamento da requisição não
	// interrompe a gravação.
	txCtx := context.WithoutCancel(ctx)
	err = uc.UoW.Do(txCtx, func(ctx context.Context, repos entity.Repositories) error {
		locked, err := repos.CheckoutLinks.LockByExternalID(ctx, checkoutID)
		if err != nil {
			return technical("DATABASE_ERROR", "erro ao travar checkout", err)
		}

		client, isNew, err := uc.resolveClient(ctx, repos, lead, checkoutID, state.Customer, externalCustomerID, log)
		if err != nil {
			return err
		}
		result.ClientID = client.ID
		result.ClientName = client.Name
		result.ClientEmail = client.Email
		result.IsNewClient = isNew

		converted, err := repos.Leads.MarkConverted(ctx, lead.ID, client.ID)
		if err != nil {
			return technical("DATABASE_ERROR", "erro ao converter lead", err)
		}
		if converted {
			activity := entity.NewActivity(lead.ID, entity.ActivityTypeConversion, "Lead convertido em cliente", map[string]any{
				"clientId":   client.ID,
				"checkoutId": checkoutID,
			})
			if err := repos.Activities.AppendLeadActivity(ctx, activity); err != nil {
				return technical("DATABASE_ERROR", "erro ao registrar atividade do lead", err)
			}
		}
		result.LeadConverted = converted

		linkedClientID, err := repos.CheckoutLinks.LinkClient(ctx, locked.ID, client.ID, checkoutStatus)
		if err != nil {
			return technical("DATABASE_ERROR", "erro ao vincular checkout", err)
		}
		result.CheckoutStatus = checkoutStatus

		// O pagamento segue o cliente que ficou no checkout
		if linkedClientID != client.ID {
			log.Warn("checkout já vinculado a outro cliente",
				zap.String("linked_client_id", linkedClientID),
				zap.String("resolved_client_id", client.ID),
			)
		}

		if state.Payment != nil {
			recorded, err := uc.resolvePayment(ctx, repos, linkedClientID, state, paymentStatus, log)
			if err != nil {
				return err
			}
			result.PaymentRecorded = recorded
		}
		return nil
	})
	if err != nil {
		if IsTechnicalError(err) || IsDomainError(err) {
			return nil, err
		}
		return nil, technical("DATABASE_ERROR", "erro na transação de reconciliação", err)
	}

	log.Info("checkout reconciliado",
		zap.String("client_id", result.ClientID),
		zap.Bool("new_client", result.IsNewClient),
		zap.Bool("lead_converted", result.LeadConverted),
		zap.Bool("payment_recorded", result.PaymentRecorded),
		zap.String("checkout_status", string(result.CheckoutStatus)),
	)
	return result, nil
}

// resolveExternalCustomer reaproveita o id já salvo no lead ou cria o
// cliente no gateway. Falha aqui nunca bloqueia a conversão.
func (uc *ReconcileCheckoutUseCase) resolveExternalCustomer(ctx context.Context, lead *entity.Lead, customer *asaas.CheckoutCustomer, log *zap.Logger) *string {
	if lead.ExternalCustomerID != nil && *lead.ExternalCustomerID != "" {
		return lead.ExternalCustomerID
	}

	id, err := uc.Gateway.CreateCustomer(ctx, asaas.CreateCustomerInput{
		Name:              firstNonEmpty(customer.Name, lead.Name),
		Email:             entity.NormalizeEmail(customer.Email),
		CpfCnpj:           firstNonEmpty(customer.Document, lead.Document),
		MobilePhone:       firstNonEmpty(customer.Phone, lead.Phone),
		ExternalReference: lead.ID,
	})
	if err != nil || id == "" {
		uc.Metrics.RecordIntegrationError("asaas_customer")
		log.Warn("GatewayCustomerCreateFailed: seguindo sem id externo", zap.Error(err))
		return nil
	}
	return &id
}

func (uc *ReconcileCheckoutUseCase) resolveClient(
	ctx context.Context,
	repos entity.Repositories,
	lead *entity.Lead,
	checkoutID string,
	c *asaas.CheckoutCustomer,
	externalCustomerID *string,
	log *zap.Logger,
) (*entity.Client, bool, error) {
	existing, err := repos.Clients.FindByEmail(ctx, c.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, technical("DATABASE_ERROR", "erro ao buscar cliente", err)
	}

	client, err := entity.NewClientFromLead(lead, c.Name, c.Email, c.Phone, c.Document, externalCustomerID)
	if err != nil {
		return nil, false, &DomainError{Code: "INVALID_CLIENT", Message: "dados do cliente inválidos", Err: err}
	}

	if err := repos.Clients.Create(ctx, client); err != nil {
		if !errors.Is(err, entity.ErrDuplicateKey) {
			return nil, false, technical("DATABASE_ERROR", "erro ao criar cliente", err)
		}
		log.Info("DuplicateKeyRace: cliente criado por outra reconciliação", zap.String("email", client.Email))
		existing, err := repos.Clients.FindByEmail(ctx, client.Email)
		if err != nil {
			return nil, false, technical("DATABASE_ERROR", "erro ao reler cliente", err)
		}
		return existing, false, nil
	}

	activity := entity.NewActivity(client.ID, entity.ActivityTypeConversion, "Cliente criado a partir de lead", map[string]any{
		"leadId":     lead.ID,
		"checkoutId": checkoutID,
	})
	if err := repos.Activities.AppendClientActivity(ctx, activity); err != nil {
		return nil, false, technical("DATABASE_ERROR", "erro ao registrar atividade do cliente", err)
	}

	return client, true, nil
}

// resolvePayment devolve true se existe uma linha de pagamento para o
// pagamento externo ao final do passo.
func (uc *ReconcileCheckoutUseCase) resolvePayment(
	ctx context.Context,
	repos entity.Repositories,
	clientID string,
	state *asaas.CheckoutStatus,
	status entity.PaymentStatus,
	log *zap.Logger,
) (bool, error) {
	p := state.Payment

	existing, err := repos.Payments.FindByExternalID(ctx, p.ID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return false, technical("DATABASE_ERROR", "erro ao buscar pagamento", err)
	}

	if existing == nil {
		// Pagamento que nunca chegou a completed não vira linha.
		if status != entity.PaymentStatusCompleted {
			return false, nil
		}

		payment := entity.NewPayment(clientID, p.ID, status, p.Value, p.BillingType, state.Raw)
		payment.Description = p.Description
		payment.DueDate = parseDueDate(p.DueDate)

		err := repos.Payments.Create(ctx, payment)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, entity.ErrDuplicateKey) {
			return false, technical("DATABASE_ERROR", "erro ao registrar pagamento", err)
		}

		log.Info("DuplicateKeyRace: pagamento registrado por outra reconciliação", zap.String("payment_id", p.ID))
		existing, err = repos.Payments.FindByExternalID(ctx, p.ID)
		if err != nil {
			return false, technical("DATABASE_ERROR", "erro ao reler pagamento", err)
		}
	}

	if existing.Status != status {
		if err := repos.Payments.UpdateStatus(ctx, existing.ID, status); err != nil {
			return false, technical("DATABASE_ERROR", "erro ao atualizar pagamento", err)
		}
	}
	return true, nil
}

func (uc *ReconcileCheckoutUseCase) normalizeCheckout(raw string, log *zap.Logger) entity.CheckoutStatus {
	status, known := NormalizeCheckoutStatus(raw)
	if !known {
		uc.Metrics.RecordStatusFallback(raw)
		log.Warn("status de checkout desconhecido, assumindo pending", zap.String("raw_status", raw))
	}
	return status
}

func (uc *ReconcileCheckoutUseCase) normalizePayment(raw string, log *zap.Logger) entity.PaymentStatus {
	status, known := NormalizePaymentStatus(raw)
	if !known {
		uc.Metrics.RecordStatusFallback(raw)
		log.Warn("status de pagamento desconhecido, assumindo pending", zap.String("raw_status", raw))
	}
	return status
}

func (uc *ReconcileCheckoutUseCase) publishConversion(ctx context.Context, source ReconcileSource, result *ReconciliationResult, log *zap.Logger) {
	if uc.Publisher == nil {
		return
	}

	payload := queue.ConversionPayload{
		ClientID:    result.ClientID,
		LeadID:      result.LeadID,
		Name:        result.ClientName,
		Email:       result.ClientEmail,
		CheckoutID:  result.CheckoutID,
		Source:      string(source),
		ConvertedAt: time.Now().UTC(),
	}
	if err := uc.Publisher.PublishConversion(context.WithoutCancel(ctx), payload); err != nil {
		uc.Metrics.RecordIntegrationError("rabbitmq")
		log.Warn("falha ao publicar evento de conversão", zap.Error(err))
	}
}

func outcomeOf(result *ReconciliationResult, err error) string {
	switch {
	case errors.Is(err, ErrCheckoutNotFound):
		return "not_found"
	case errors.Is(err, ErrGatewayUnavailable):
		return "gateway_unavailable"
	case err != nil:
		return "error"
	case result.Pending:
		return "pending"
	case result.IsNewClient:
		return "converted"
	default:
		return "reconciled"
	}
}

func parseDueDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
