package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("variável de ambiente vazia")

type Config struct {
	Env      string
	HTTPAddr string

	DatabaseDriver string
	DatabaseURL    string

	AsaasURL          string
	AsaasAPIKey       string
	AsaasTimeout      time.Duration
	AsaasWebhookToken string

	AdminAPIKey        string
	CheckoutSuccessURL string
	SweepInterval      time.Duration
	SweepLimit         int

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	// Usados no e-mail de boas-vindas
	InstitutionName string
	PortalURL       string

	CORSAllowedOrigins []string
}

// Load lê o .env (se existir) e as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()

	databaseURL, err := requireEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	asaasKey, err := requireEnv("ASAAS_API_KEY")
	if err != nil {
		return nil, err
	}

	asaasTimeout, err := getEnvDuration("ASAAS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("SWEEP_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	sweepLimit, err := getEnvInt("SWEEP_LIMIT", 500)
	if err != nil {
		return nil, err
	}
	mailPort, err := getEnvInt("MAIL_PORT", 587)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    databaseURL,

		AsaasURL:          getEnv("ASAAS_URL", "https://sandbox.asaas.com/api/v3"),
		AsaasAPIKey:       asaasKey,
		AsaasTimeout:      asaasTimeout,
		AsaasWebhookToken: os.Getenv("ASAAS_WEBHOOK_TOKEN"),

		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),
		CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "/"),
		SweepInterval:      sweepInterval,
		SweepLimit:         sweepLimit,

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		MailHost: os.Getenv("MAIL_HOST"),
		MailPort: mailPort,
		MailUser: os.Getenv("MAIL_USER"),
		MailPass: os.Getenv("MAIL_PASS"),
		MailFrom: getEnv("MAIL_FROM", "nao-responda@localhost"),

		InstitutionName: getEnv("MAIL_INSTITUTION_NAME", "Instituição"),
		PortalURL:       os.Getenv("PORTAL_URL"),

		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s não definida: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s inválida: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s inválida: %w", key, err)
	}
	return n, nil
}
