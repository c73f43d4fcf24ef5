package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/internal/settlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.LineItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) BatchInsert(ctx context.Context, db *gorm.DB, items []*domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LineItem, error) {
	var item domain.LineItem
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM settlement_line_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := db.WithContext(ctx).
		Where("settlement_period_id = ?", periodID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByPartnerAndPeriod(ctx context.Context, db *gorm.DB, partnerID, periodID snowflake.ID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := db.WithContext(ctx).
		Where("settlement_period_id = ? AND partner_id = ?", periodID, partnerID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteNormalByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM settlement_line_items
		 WHERE settlement_period_id = ? AND entry_type = ?`,
		periodID,
		domain.EntryTypeNormal,
	).Error
}

func (r *repo) AggregateByPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) (perioddomain.Aggregates, error) {
	var row struct {
		TotalRevenue          int64 `gorm:"column:total_revenue"`
		TotalSettlementAmount int64 `gorm:"column:total_settlement_amount"`
		PartnerCount          int   `gorm:"column:partner_count"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(revenue_amount), 0) AS total_revenue,
			COALESCE(SUM(settlement_amount), 0) AS total_settlement_amount,
			COUNT(DISTINCT partner_id) AS partner_count
		 FROM settlement_line_items
		 WHERE settlement_period_id = ?`,
		periodID,
	).Scan(&row).Error
	if err != nil {
		return perioddomain.Aggregates{}, err
	}
	return perioddomain.Aggregates{
		TotalRevenue:          row.TotalRevenue,
		TotalSettlementAmount: row.TotalSettlementAmount,
		PartnerCount:          row.PartnerCount,
	}, nil
}

func (r *repo) SummarizeByPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]domain.PartnerPeriodAggregate, error) {
	var rows []domain.PartnerPeriodAggregate
	err := db.WithContext(ctx).Raw(
		`SELECT
			settlement_period_id,
			COUNT(*) AS line_item_count,
			COALESCE(SUM(revenue_amount), 0) AS total_revenue,
			COALESCE(SUM(settlement_amount), 0) AS total_settlement_amount
		 FROM settlement_line_items
		 WHERE partner_id = ?
		 GROUP BY settlement_period_id`,
		partnerID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
