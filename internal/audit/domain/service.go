package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one append-only record of an actor-initiated engine operation.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"not null" json:"actor_id"`
	Action     string            `gorm:"not null;index" json:"action"`
	TargetType string            `gorm:"not null" json:"target_type"`
	TargetID   string            `gorm:"index" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type ListRequest struct {
	Action     string
	TargetType string
	TargetID   string
	Limit      int
	Offset     int
}

type Service interface {
	Record(ctx context.Context, actorID, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *AuditLog) error
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
