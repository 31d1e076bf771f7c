package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

type LeadRepository struct {
	DB DBTX
}

func NewLeadRepository(db DBTX) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, document, status, segment,
		       converted_to_client_id, external_customer_id, created_at, updated_at
		FROM leads
		WHERE id = $1
	`

	var (
		lead                            entity.Lead
		phone, document, segment        sql.NullString
		convertedTo, externalCustomerID sql.NullString
	)

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&phone,
		&document,
		&lead.Status,
		&segment,
		&convertedTo,
		&externalCustomerID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}

	lead.Phone = phone.String
	lead.Document = document.String
	lead.Segment = segment.String
	lead.ConvertedToClientID = stringPtr(convertedTo)
	lead.ExternalCustomerID = stringPtr(externalCustomerID)

	return &lead, nil
}

func (r *LeadRepository) MarkConverted(ctx context.Context, leadID, clientID string) (bool, error) {
	query := `
		UPDATE leads
		SET status = $3, converted_to_client_id = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $3
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, clientID, entity.LeadStatusConverted)
	if err != nil {
		return false, fmt.Errorf("erro ao converter lead: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao converter lead: %w", err)
	}
	return n == 1, nil
}

func (r *LeadRepository) ListSweepCandidates(ctx context.Context, limit int) ([]entity.SweepCandidate, error) {
	query := `
		SELECT cl.id, cl.external_checkout_id, cl.status, l.id, l.email
		FROM checkout_links cl
		JOIN leads l ON l.id = cl.lead_id
		WHERE l.status <> $1
		  AND cl.status <> $2
		  AND cl.client_id IS NULL
		ORDER BY cl.created_at ASC
		LIMIT $3
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.LeadStatusConverted, entity.CheckoutStatusCanceled, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar checkouts pendentes: %w", err)
	}
	defer rows.Close()

	var candidates []entity.SweepCandidate
	for rows.Next() {
		var c entity.SweepCandidate
		if err := rows.Scan(&c.CheckoutLinkID, &c.ExternalCheckoutID, &c.CheckoutStatus, &c.LeadID, &c.LeadEmail); err != nil {
			return nil, fmt.Errorf("erro ao escanear checkout pendente: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar checkouts pendentes: %w", err)
	}

	return candidates, nil
}
