package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

// ActivityRepository só insere: as trilhas de auditoria são append-only.
type ActivityRepository struct {
	DB DBTX
}

func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) AppendLeadActivity(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO lead_activities (id, lead_id, type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return r.insert(ctx, query, a)
}

func (r *ActivityRepository) AppendClientActivity(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO client_activities (id, client_id, type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return r.insert(ctx, query, a)
}

func (r *ActivityRepository) insert(ctx context.Context, query string, a *entity.Activity) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("erro ao serializar metadata: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query, a.ID, a.SubjectID, a.Type, a.Description, string(metadata), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao registrar atividade %s: %w", a.Type, err)
	}
	return nil
}
