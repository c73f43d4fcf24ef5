package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Event is one attribution record emitted by the ingestion pipeline.
// Events without a partner code are not partner-attributable.
type Event struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	PartnerCode    string            `gorm:"index" json:"partner_code,omitempty"`
	OrganizationID snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	AttributedAt   time.Time         `gorm:"not null;index" json:"attributed_at"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Event) TableName() string {
	return "attribution_events"
}

// Stream is the read interface over the attribution pipeline's output.
type Stream interface {
	// ListAttributed returns events with a partner code whose attribution
	// timestamp falls in [from, to), ordered by attribution time.
	ListAttributed(ctx context.Context, from, to time.Time) ([]Event, error)
}
