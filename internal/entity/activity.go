package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const ActivityTypeConversion = "conversion"

// Activity é uma linha de auditoria append-only (lead_activities / client_activities).
type Activity struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"` // lead_id ou client_id
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewActivity(subjectID, activityType, description string, metadata map[string]any) *Activity {
	return &Activity{
		ID:          uuid.New().String(),
		SubjectID:   subjectID,
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
}

type ActivityRepositoryInterface interface {
	AppendLeadActivity(ctx context.Context, a *Activity) error
	AppendClientActivity(ctx context.Context, a *Activity) error
}
