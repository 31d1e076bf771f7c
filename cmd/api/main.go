package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-conversions/internal/config"
	"github.com/xavierca1/ligue-conversions/internal/infra/database"
	"github.com/xavierca1/ligue-conversions/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-conversions/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-conversions/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-conversions/internal/infra/logger"
	"github.com/xavierca1/ligue-conversions/internal/infra/mail"
	"github.com/xavierca1/ligue-conversions/internal/infra/queue"
	"github.com/xavierca1/ligue-conversions/internal/infra/worker"
	"github.com/xavierca1/ligue-conversions/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger ainda não existe
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("falha ao conectar no banco", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("falha ao aplicar schema", zap.Error(err))
	}

	uow := database.NewUnitOfWork(db)
	metrics := middleware.PrometheusRecorder{}

	// 2. Gateway e fila (RabbitMQ é opcional)
	gateway := asaas.NewClient(cfg.AsaasAPIKey, cfg.AsaasURL, cfg.AsaasTimeout)

	var (
		publisher  usecase.ConversionPublisher
		rabbitConn handlers.ConnectionState
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("falha ao conectar no RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)
		rabbitConn = rabbitMQ.Conn

		if cfg.MailHost != "" {
			consumerCh, err := rabbitMQ.Conn.Channel()
			if err != nil {
				log.Fatal("falha ao abrir canal do consumidor", zap.Error(err))
			}
			mailer := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.InstitutionName, cfg.PortalURL)
			welcomeWorker := queue.NewWorker(consumerCh, mailer, log.Named("welcome_worker"))
			go func() {
				if err := welcomeWorker.Start(ctx, queue.QueueName); err != nil {
					log.Error("worker de boas-vindas parou", zap.Error(err))
				}
			}()
		}
	} else {
		log.Warn("RABBITMQ_URL não definida: eventos de conversão desligados")
	}

	// 3. UseCases
	reconcileUC := usecase.NewReconcileCheckoutUseCase(uow, gateway, publisher, metrics, log.Named("reconcile"))
	sweepUC := usecase.NewSweepLeadsUseCase(uow.Repositories().Leads, reconcileUC, log.Named("sweep"))

	// 4. Workers
	sweepWorker := worker.NewSweepWorker(sweepUC, cfg.SweepInterval, cfg.SweepLimit, log.Named("sweep_worker"))
	go sweepWorker.Start(ctx)

	successLimiter := middleware.NewRateLimiter(30, time.Minute)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				successLimiter.Cleanup()
			}
		}
	}()

	// 5. Handlers
	checkoutHandler := handlers.NewCheckoutHandler(reconcileUC, cfg.CheckoutSuccessURL, log.Named("checkout_handler"))
	sweepHandler := handlers.NewSweepHandler(sweepUC, log.Named("sweep_handler"))
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.WebhookTokenHeader, middleware.AdminKeyHeader},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.With(successLimiter.Handler).Get("/checkout/success", checkoutHandler.Success)
	r.With(middleware.RequireHeaderToken(middleware.WebhookTokenHeader, cfg.AsaasWebhookToken)).
		Post("/checkout/notify", checkoutHandler.Notify)
	r.With(middleware.RequireHeaderToken(middleware.AdminKeyHeader, cfg.AdminAPIKey)).
		Post("/admin/leads/sweep", sweepHandler.Handle)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("servidor no ar", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("falha no servidor HTTP", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("encerrando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("erro no shutdown", zap.Error(err))
	}
}
