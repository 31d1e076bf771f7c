package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

type CheckoutLinkRepository struct {
	DB DBTX
}

func NewCheckoutLinkRepository(db DBTX) *CheckoutLinkRepository {
	return &CheckoutLinkRepository{DB: db}
}

const selectCheckoutLink = `
	SELECT id, external_checkout_id, lead_id, client_id, status, created_at, updated_at
	FROM checkout_links
	WHERE external_checkout_id = $1
`

func (r *CheckoutLinkRepository) FindByExternalID(ctx context.Context, externalCheckoutID string) (*entity.CheckoutLink, error) {
	return r.scanOne(ctx, selectCheckoutLink, externalCheckoutID)
}

func (r *CheckoutLinkRepository) LockByExternalID(ctx context.Context, externalCheckoutID string) (*entity.CheckoutLink, error) {
	return r.scanOne(ctx, selectCheckoutLink+" FOR UPDATE", externalCheckoutID)
}

func (r *CheckoutLinkRepository) LinkClient(ctx context.Context, id, clientID string, status entity.CheckoutStatus) (string, error) {
	// client_id nunca é sobrescrito depois de definido
	query := `
		UPDATE checkout_links
		SET client_id = COALESCE(client_id, $2), status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING client_id
	`

	var kept string
	err := r.DB.QueryRowContext(ctx, query, id, clientID, status).Scan(&kept)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("erro ao vincular checkout: %w", err)
	}
	return kept, nil
}

func (r *CheckoutLinkRepository) scanOne(ctx context.Context, query, externalCheckoutID string) (*entity.CheckoutLink, error) {
	var (
		link     entity.CheckoutLink
		clientID sql.NullString
	)

	err := r.DB.QueryRowContext(ctx, query, externalCheckoutID).Scan(
		&link.ID,
		&link.ExternalCheckoutID,
		&link.LeadID,
		&clientID,
		&link.Status,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar checkout: %w", err)
	}

	link.ClientID = stringPtr(clientID)
	return &link, nil
}
