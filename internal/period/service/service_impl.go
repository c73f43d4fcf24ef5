package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"github.com/smallbiznis/revshare/internal/clock"
	"github.com/smallbiznis/revshare/internal/locking"
	"github.com/smallbiznis/revshare/internal/observability/metrics"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	createLockKey = "revshare:period:create"
	leaseTTL      = 15 * time.Second
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	guard *locking.Guard
	lease *locking.Lease
	repo  perioddomain.Repository
	audit auditdomain.Service
	obs   *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Guard *locking.Guard
	Lease *locking.Lease `optional:"true"`
	Repo  perioddomain.Repository
	Audit auditdomain.Service `optional:"true"`
	Obs   *metrics.Metrics    `optional:"true"`
}

func NewService(p ServiceParam) perioddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("period.service"),
		genID: p.GenID,
		clock: p.Clock,
		guard: p.Guard,
		lease: p.Lease,
		repo:  p.Repo,
		audit: p.Audit,
		obs:   p.Obs,
	}
}

// Create opens a new settlement period. The open-period and overlap checks are
// serialized globally, and the partial unique index on OPEN rows backs the
// check with an atomic constraint.
func (s *Service) Create(ctx context.Context, req perioddomain.CreatePeriodRequest) (*perioddomain.SettlementPeriod, error) {
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return nil, perioddomain.ErrMissingRequired
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, perioddomain.ErrInvalidDateRange
	}

	release := s.guard.Acquire(createLockKey)
	defer release()

	token, acquired, err := s.lease.TryAcquire(ctx, createLockKey, leaseTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, perioddomain.ErrConcurrentUpdate
	}
	defer func() { _ = s.lease.Release(ctx, createLockKey, token) }()

	period := &perioddomain.SettlementPeriod{
		ID:          s.genID.Generate(),
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		Status:      perioddomain.StatusOpen,
		CreatedAt:   s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overlapping, err := s.repo.FindOverlapping(ctx, tx, period.PeriodStart, period.PeriodEnd)
		if err != nil {
			return err
		}
		if overlapping != nil {
			return perioddomain.ErrPeriodOverlap
		}

		open, err := s.repo.FindOpen(ctx, tx)
		if err != nil {
			return err
		}
		if open != nil {
			return perioddomain.ErrOpenPeriodExists
		}

		return s.repo.Insert(ctx, tx, period)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, perioddomain.ErrOpenPeriodExists
		}
		return nil, err
	}

	s.obs.PeriodOpened(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, "", "period.create", "settlement_period", period.ID.String(), map[string]any{
			"period_start": period.PeriodStart,
			"period_end":   period.PeriodEnd,
		})
	}

	s.log.Info("settlement period opened",
		zap.String("period_id", period.ID.String()),
		zap.Time("period_start", period.PeriodStart),
		zap.Time("period_end", period.PeriodEnd),
	)
	return period, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*perioddomain.SettlementPeriod, error) {
	period, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}
	return period, nil
}

func (s *Service) GetOpen(ctx context.Context) (*perioddomain.SettlementPeriod, error) {
	period, err := s.repo.FindOpen(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}
	return period, nil
}

func (s *Service) List(ctx context.Context, req perioddomain.ListPeriodsRequest) ([]perioddomain.SettlementPeriod, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, s.db, req.Status, limit, offset)
}

// Lock seals a CALCULATED period. Locking an already-LOCKED period succeeds
// with AlreadyLocked set, so retried lock requests never fail spuriously.
func (s *Service) Lock(ctx context.Context, id snowflake.ID, actorID string) (perioddomain.LockResult, error) {
	release := s.guard.Acquire("revshare:period:" + id.String())
	defer release()

	var result perioddomain.LockResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if period == nil {
			return perioddomain.ErrNotFound
		}

		switch period.Status {
		case perioddomain.StatusLocked:
			result = perioddomain.LockResult{Period: period, AlreadyLocked: true}
			return nil
		case perioddomain.StatusOpen:
			return perioddomain.ErrNotCalculated
		}

		now := s.clock.Now()
		if err := s.repo.MarkLocked(ctx, tx, id, now, actorID); err != nil {
			return err
		}

		period.Status = perioddomain.StatusLocked
		period.LockedAt = &now
		period.LockedBy = actorID
		result = perioddomain.LockResult{Period: period}
		return nil
	})
	if err != nil {
		return perioddomain.LockResult{}, err
	}

	if !result.AlreadyLocked {
		s.obs.PeriodLocked(ctx)
		if s.audit != nil {
			_ = s.audit.Record(ctx, actorID, "period.lock", "settlement_period", id.String(), nil)
		}
		s.log.Info("settlement period locked",
			zap.String("period_id", id.String()),
			zap.String("actor_id", actorID),
		)
	}
	return result, nil
}
