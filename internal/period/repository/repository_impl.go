package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revshare/internal/period/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, period *domain.SettlementPeriod) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO settlement_periods (
			id, period_start, period_end, status,
			total_revenue, total_settlement_amount, partner_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		period.ID,
		period.PeriodStart,
		period.PeriodEnd,
		period.Status,
		period.TotalRevenue,
		period.TotalSettlementAmount,
		period.PartnerCount,
		period.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SettlementPeriod, error) {
	var period domain.SettlementPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM settlement_periods WHERE id = ?`,
		id,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB) (*domain.SettlementPeriod, error) {
	var period domain.SettlementPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM settlement_periods WHERE status = ? LIMIT 1`,
		domain.StatusOpen,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) FindOverlapping(ctx context.Context, db *gorm.DB, start, end time.Time) (*domain.SettlementPeriod, error) {
	var period domain.SettlementPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM settlement_periods
		 WHERE period_start < ? AND period_end > ?
		 LIMIT 1`,
		end,
		start,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status domain.Status, limit, offset int) ([]domain.SettlementPeriod, error) {
	var periods []domain.SettlementPeriod
	stmt := db.WithContext(ctx).Model(&domain.SettlementPeriod{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	err := stmt.
		Order("period_start desc").
		Limit(limit).
		Offset(offset).
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repo) MarkCalculated(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time, by string, totals domain.Aggregates) error {
	return db.WithContext(ctx).Exec(
		`UPDATE settlement_periods
		 SET status = ?, calculated_at = ?, calculated_by = ?,
		     total_revenue = ?, total_settlement_amount = ?, partner_count = ?
		 WHERE id = ?`,
		domain.StatusCalculated,
		at,
		by,
		totals.TotalRevenue,
		totals.TotalSettlementAmount,
		totals.PartnerCount,
		id,
	).Error
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, totals domain.Aggregates) error {
	return db.WithContext(ctx).Exec(
		`UPDATE settlement_periods
		 SET total_revenue = ?, total_settlement_amount = ?, partner_count = ?
		 WHERE id = ?`,
		totals.TotalRevenue,
		totals.TotalSettlementAmount,
		totals.PartnerCount,
		id,
	).Error
}

func (r *repo) MarkLocked(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time, by string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE settlement_periods
		 SET status = ?, locked_at = ?, locked_by = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusLocked,
		at,
		by,
		id,
		domain.StatusCalculated,
	).Error
}
