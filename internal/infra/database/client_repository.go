package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

type ClientRepository struct {
	DB DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*entity.Client, error) {
	query := `
		SELECT id, name, email, phone, document, status, segment,
		       external_customer_id, created_from_lead_id, created_at, updated_at
		FROM clients
		WHERE email = $1
	`

	var (
		c                        entity.Client
		phone, document, segment sql.NullString
		externalCustomerID       sql.NullString
	)

	err := r.DB.QueryRowContext(ctx, query, entity.NormalizeEmail(email)).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&phone,
		&document,
		&c.Status,
		&segment,
		&externalCustomerID,
		&c.CreatedFromLeadID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar cliente: %w", err)
	}

	c.Phone = phone.String
	c.Document = document.String
	c.Segment = segment.String
	c.ExternalCustomerID = stringPtr(externalCustomerID)

	return &c, nil
}

// Create usa ON CONFLICT DO NOTHING para não abortar a transação quando
// outra reconciliação já inseriu o mesmo email.
func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (
			id, name, email, phone, document, status, segment,
			external_customer_id, created_from_lead_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`

	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Name,
		entity.NormalizeEmail(c.Email),
		nullString(c.Phone),
		nullString(c.Document),
		c.Status,
		nullString(c.Segment),
		nullStringPtr(c.ExternalCustomerID),
		c.CreatedFromLeadID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateKey
		}
		return fmt.Errorf("erro ao criar cliente: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao criar cliente: %w", err)
	}
	if n == 0 {
		return entity.ErrDuplicateKey
	}

	return nil
}
