package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// WelcomeSender envia o e-mail de boas-vindas ao cliente convertido.
type WelcomeSender interface {
	SendWelcome(to, name string) error
}

// Consumer é o subconjunto de *amqp.Channel usado pelo worker.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Mailer  WelcomeSender
	Logger  *zap.Logger
}

func NewWorker(ch Consumer, mailer WelcomeSender, logger *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
		Logger:  logger,
	}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack: ack manual
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("worker aguardando na fila", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("canal do RabbitMQ fechado")
				return nil
			}
			w.handle(d)
		}
	}
}

func (w *Worker) handle(d amqp.Delivery) {
	var payload ConversionPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		// Mensagem malformada vai direto para a DLQ
		w.Logger.Error("payload inválido", zap.Error(err))
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("client_id", payload.ClientID), zap.String("lead_id", payload.LeadID))

	if err := w.processMessage(payload); err != nil {
		log.Error("falha ao processar conversão", zap.Error(err))
		// Primeira falha volta para a fila; reentrega falhando vai para a DLQ.
		d.Nack(false, !d.Redelivered)
		return
	}

	log.Info("conversão processada")
	d.Ack(false)
}

func (w *Worker) processMessage(payload ConversionPayload) error {
	if payload.Email == "" {
		return errors.New("conversão sem email")
	}
	return w.Mailer.SendWelcome(payload.Email, payload.Name)
}
