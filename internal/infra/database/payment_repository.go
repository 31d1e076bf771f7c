package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

type PaymentRepository struct {
	DB DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) FindByExternalID(ctx context.Context, externalPaymentID string) (*entity.Payment, error) {
	query := `
		SELECT id, client_id, type, status, value, payment_method, external_payment_id,
		       external_payload, description, due_date, created_at, updated_at
		FROM payments
		WHERE external_payment_id = $1
	`

	var (
		p           entity.Payment
		method      sql.NullString
		description sql.NullString
		payload     []byte
		dueDate     sql.NullTime
	)

	err := r.DB.QueryRowContext(ctx, query, externalPaymentID).Scan(
		&p.ID,
		&p.ClientID,
		&p.Type,
		&p.Status,
		&p.Value,
		&method,
		&p.ExternalPaymentID,
		&payload,
		&description,
		&dueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar pagamento: %w", err)
	}

	p.PaymentMethod = method.String
	p.Description = description.String
	p.ExternalPayload = payload
	if dueDate.Valid {
		p.DueDate = &dueDate.Time
	}

	return &p, nil
}

// Create: external_payment_id é a chave de idempotência
func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, client_id, type, status, value, payment_method, external_payment_id,
			external_payload, description, due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT DO NOTHING
	`

	var payload any
	if len(p.ExternalPayload) > 0 {
		payload = string(p.ExternalPayload)
	}

	var dueDate sql.NullTime
	if p.DueDate != nil {
		dueDate = sql.NullTime{Time: *p.DueDate, Valid: true}
	}

	res, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.ClientID,
		p.Type,
		p.Status,
		p.Value,
		nullString(p.PaymentMethod),
		p.ExternalPaymentID,
		payload,
		nullString(p.Description),
		dueDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateKey
		}
		return fmt.Errorf("erro ao criar pagamento: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao criar pagamento: %w", err)
	}
	if n == 0 {
		return entity.ErrDuplicateKey
	}
	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("erro ao atualizar pagamento: %w", err)
	}
	return nil
}
