package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type EntryType string

const (
	EntryTypeNormal     EntryType = "NORMAL"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

// Provenance metadata keys stored on each line item.
const (
	MetaCalculatedAt = "calculated_at"
	MetaRateSource   = "rate_source"
	MetaAttributedAt = "attributed_at"
	MetaAdjustedBy   = "adjusted_by"
)

const (
	RateSourceAgreement = "agreement"
	RateSourceDefault   = "default"
)

// LineItem is one immutable revenue-share record. Amounts are currency minor
// units. SettlementAmount is stored rather than recomputed so historical rates
// survive agreement changes. Rows are never updated; the only deletion path is
// the bulk discard during recalculation of a not-yet-locked period, and that
// touches NORMAL rows only.
type LineItem struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	SettlementPeriodID  snowflake.ID      `gorm:"not null;index" json:"settlement_period_id"`
	PartnerID           snowflake.ID      `gorm:"not null;index" json:"partner_id"`
	OrganizationID      snowflake.ID      `gorm:"not null" json:"organization_id"`
	SourceAttributionID *snowflake.ID     `json:"source_attribution_id,omitempty"`
	RevenueAmount       int64             `gorm:"not null" json:"revenue_amount"`
	SharePercent        float64           `gorm:"column:revenue_share_percent;not null" json:"revenue_share_percent"`
	SettlementAmount    int64             `gorm:"not null" json:"settlement_amount"`
	Currency            string            `gorm:"not null" json:"currency"`
	AgreementID         *snowflake.ID     `json:"agreement_id,omitempty"`
	EntryType           EntryType         `gorm:"not null;default:'NORMAL'" json:"entry_type"`
	AdjustsSettlementID *snowflake.ID     `json:"adjusts_settlement_id,omitempty"`
	AdjustmentReason    string            `json:"adjustment_reason,omitempty"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LineItem) TableName() string {
	return "settlement_line_items"
}
