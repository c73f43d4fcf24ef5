package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Partner is a read-only view over the partner registry. The engine never
// creates or mutates partners.
type Partner struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	Code                string       `gorm:"not null;uniqueIndex" json:"code"`
	Name                string       `gorm:"not null" json:"name"`
	IsActive            bool         `gorm:"not null" json:"is_active"`
	DefaultSharePercent float64      `gorm:"not null" json:"default_share_percent"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Agreement is a time-bounded revenue-share override for one partner.
// EffectiveTo nil means open-ended.
type Agreement struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	PartnerID     snowflake.ID `gorm:"not null;index" json:"partner_id"`
	SharePercent  float64      `gorm:"not null" json:"share_percent"`
	EffectiveFrom time.Time    `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time   `json:"effective_to,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Agreement) TableName() string {
	return "partner_agreements"
}

// Directory is the narrow read interface the settlement engine consumes.
type Directory interface {
	FindByCode(ctx context.Context, code string) (*Partner, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Partner, error)
	// FindAgreementAt returns the agreement in force for the partner at the
	// given instant. Overlapping windows resolve to the most recently
	// starting one. Nil when no agreement covers the instant.
	FindAgreementAt(ctx context.Context, partnerID snowflake.ID, at time.Time) (*Agreement, error)
}

var ErrNotFound = errors.New("not_found")
