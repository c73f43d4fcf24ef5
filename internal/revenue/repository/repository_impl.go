package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revshare/internal/revenue/domain"
	"gorm.io/gorm"
)

type lookup struct {
	db *gorm.DB
}

// Provide returns the default gorm-backed revenue lookup reading the
// revenue_entries table maintained by the billing pipeline.
func Provide(db *gorm.DB) domain.Lookup {
	return &lookup{db: db}
}

func (r *lookup) AmountAt(ctx context.Context, organizationID snowflake.ID, at time.Time) (domain.Amount, error) {
	var row struct {
		AmountMinor int64  `gorm:"column:amount_minor"`
		Currency    string `gorm:"column:currency"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT amount_minor, currency
		 FROM revenue_entries
		 WHERE organization_id = ?
		   AND effective_from <= ?
		   AND (effective_to IS NULL OR effective_to > ?)
		 ORDER BY effective_from DESC
		 LIMIT 1`,
		organizationID,
		at,
		at,
	).Scan(&row).Error
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.Amount{
		AmountMinor: row.AmountMinor,
		Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
	}, nil
}
