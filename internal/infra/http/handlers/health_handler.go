package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger é satisfeito por *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectionState é satisfeito por *amqp091.Connection.
type ConnectionState interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  ConnectionState
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ ConnectionState) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	status := "healthy"

	// Banco é obrigatório
	if h.DB == nil {
		deps["database"] = "not configured"
		status = "degraded"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			deps["database"] = "healthy"
		}
	}

	// RabbitMQ é opcional: sem ele só não há e-mail de boas-vindas
	switch {
	case h.RabbitMQ == nil:
		deps["rabbitmq"] = "not configured"
	case h.RabbitMQ.IsClosed():
		deps["rabbitmq"] = "unhealthy: connection closed"
	default:
		deps["rabbitmq"] = "healthy"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
