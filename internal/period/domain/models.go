package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusCalculated Status = "CALCULATED"
	StatusLocked     Status = "LOCKED"
)

// SettlementPeriod is a non-overlapping date range over which settlements are
// computed once and then sealed. Status only moves forward:
// OPEN -> CALCULATED -> LOCKED.
type SettlementPeriod struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PeriodStart time.Time    `gorm:"not null;index" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"not null;index" json:"period_end"`
	Status      Status       `gorm:"not null;default:'OPEN'" json:"status"`

	CalculatedAt *time.Time `json:"calculated_at,omitempty"`
	CalculatedBy string     `json:"calculated_by,omitempty"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	LockedBy     string     `json:"locked_by,omitempty"`

	TotalRevenue          int64 `gorm:"not null;default:0" json:"total_revenue"`
	TotalSettlementAmount int64 `gorm:"not null;default:0" json:"total_settlement_amount"`
	PartnerCount          int   `gorm:"not null;default:0" json:"partner_count"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SettlementPeriod) TableName() string {
	return "settlement_periods"
}

// Overlaps reports whether the half-open ranges intersect.
func (p SettlementPeriod) Overlaps(start, end time.Time) bool {
	return p.PeriodStart.Before(end) && p.PeriodEnd.After(start)
}

// Contains reports whether the instant falls inside the half-open range.
func (p SettlementPeriod) Contains(at time.Time) bool {
	return !at.Before(p.PeriodStart) && at.Before(p.PeriodEnd)
}
