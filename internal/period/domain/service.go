package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreatePeriodRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type ListPeriodsRequest struct {
	Status Status
	Limit  int
	Offset int
}

type LockResult struct {
	Period        *SettlementPeriod `json:"period"`
	AlreadyLocked bool              `json:"already_locked"`
}

// Aggregates are the derived totals cached on a period after calculation.
type Aggregates struct {
	TotalRevenue          int64
	TotalSettlementAmount int64
	PartnerCount          int
}

type Service interface {
	Create(ctx context.Context, req CreatePeriodRequest) (*SettlementPeriod, error)
	Get(ctx context.Context, id snowflake.ID) (*SettlementPeriod, error)
	GetOpen(ctx context.Context) (*SettlementPeriod, error)
	List(ctx context.Context, req ListPeriodsRequest) ([]SettlementPeriod, error)
	Lock(ctx context.Context, id snowflake.ID, actorID string) (LockResult, error)
}

var (
	ErrMissingRequired  = errors.New("missing_required")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrPeriodOverlap    = errors.New("period_overlap")
	ErrOpenPeriodExists = errors.New("open_period_exists")
	ErrNotFound         = errors.New("not_found")
	ErrPeriodLocked     = errors.New("period_locked")
	ErrNotCalculated    = errors.New("not_calculated")
	ErrConcurrentUpdate = errors.New("conflict")
)
