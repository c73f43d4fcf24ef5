package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entry is one revenue window for an organization, maintained by the billing
// pipeline. Windows are half-open; a NULL effective_to means still current.
type Entry struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrganizationID snowflake.ID `gorm:"not null;index" json:"organization_id"`
	AmountMinor    int64        `gorm:"not null" json:"amount_minor"`
	Currency       string       `gorm:"not null" json:"currency"`
	EffectiveFrom  time.Time    `gorm:"not null;index" json:"effective_from"`
	EffectiveTo    *time.Time   `json:"effective_to,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Entry) TableName() string {
	return "revenue_entries"
}
