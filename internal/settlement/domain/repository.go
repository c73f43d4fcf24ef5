package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"gorm.io/gorm"
)

// Repository is the line-item store. Inserts are append-only; the only delete
// is the recalculation discard of NORMAL rows.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *LineItem) error
	BatchInsert(ctx context.Context, db *gorm.DB, items []*LineItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LineItem, error)
	ListByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) ([]LineItem, error)
	ListByPartnerAndPeriod(ctx context.Context, db *gorm.DB, partnerID, periodID snowflake.ID) ([]LineItem, error)
	DeleteNormalByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) error
	AggregateByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) (perioddomain.Aggregates, error)
	SummarizeByPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]PartnerPeriodAggregate, error)
}

// PartnerPeriodAggregate is one per-period rollup row for a partner.
type PartnerPeriodAggregate struct {
	SettlementPeriodID    snowflake.ID `gorm:"column:settlement_period_id"`
	LineItemCount         int          `gorm:"column:line_item_count"`
	TotalRevenue          int64        `gorm:"column:total_revenue"`
	TotalSettlementAmount int64        `gorm:"column:total_settlement_amount"`
}
