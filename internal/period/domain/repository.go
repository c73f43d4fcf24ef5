package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the narrow period store. Methods take the handle explicitly so
// callers can run them inside a transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, period *SettlementPeriod) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SettlementPeriod, error)
	FindOpen(ctx context.Context, db *gorm.DB) (*SettlementPeriod, error)
	FindOverlapping(ctx context.Context, db *gorm.DB, start, end time.Time) (*SettlementPeriod, error)
	List(ctx context.Context, db *gorm.DB, status Status, limit, offset int) ([]SettlementPeriod, error)
	MarkCalculated(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time, by string, totals Aggregates) error
	MarkLocked(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time, by string) error
	UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, totals Aggregates) error
}
