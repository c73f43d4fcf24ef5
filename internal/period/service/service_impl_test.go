package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/revshare/internal/clock"
	"github.com/smallbiznis/revshare/internal/locking"
	"github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/internal/period/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPeriodService(t *testing.T) (domain.Service, domain.Repository, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.SettlementPeriod{}))

	fake := clock.NewFakeClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	repo := repository.Provide()
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: fake,
		Guard: locking.NewGuard(),
		Repo:  repo,
	})
	return svc, repo, db, fake
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreatePeriodValidation(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePeriodRequest{PeriodEnd: day(2024, 2, 1)})
	require.ErrorIs(t, err, domain.ErrMissingRequired)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{PeriodStart: day(2024, 1, 1)})
	require.ErrorIs(t, err, domain.ErrMissingRequired)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 2, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 2, 1),
		PeriodEnd:   day(2024, 1, 1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestCreatePeriodSecondOpenRejected(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 1, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, first.Status)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 2, 1),
		PeriodEnd:   day(2024, 3, 1),
	})
	require.ErrorIs(t, err, domain.ErrOpenPeriodExists)
}

func TestCreatePeriodOverlapRejected(t *testing.T) {
	svc, repo, db, fake := setupPeriodService(t)
	ctx := context.Background()

	existing, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 1, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkCalculated(ctx, db, existing.ID, fake.Now(), "tester", domain.Aggregates{}))

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"overlaps head", day(2023, 12, 15), day(2024, 1, 15)},
		{"overlaps tail", day(2024, 1, 15), day(2024, 2, 15)},
		{"contained", day(2024, 1, 10), day(2024, 1, 20)},
		{"containing", day(2023, 12, 1), day(2024, 3, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, domain.CreatePeriodRequest{
				PeriodStart: tc.start,
				PeriodEnd:   tc.end,
			})
			require.ErrorIs(t, err, domain.ErrPeriodOverlap)
		})
	}

	// Adjacent half-open ranges do not overlap.
	next, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 2, 1),
		PeriodEnd:   day(2024, 3, 1),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, next.Status)
}

func TestGetOpenPeriod(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.GetOpen(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	created, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 1, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.NoError(t, err)

	open, err := svc.GetOpen(ctx)
	require.NoError(t, err)
	require.Equal(t, created.ID, open.ID)
}

func TestLockRequiresCalculated(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t)
	ctx := context.Background()

	period, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 1, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.NoError(t, err)

	_, err = svc.Lock(ctx, period.ID, "tester")
	require.ErrorIs(t, err, domain.ErrNotCalculated)
}

func TestLockIdempotent(t *testing.T) {
	svc, repo, db, fake := setupPeriodService(t)
	ctx := context.Background()

	period, err := svc.Create(ctx, domain.CreatePeriodRequest{
		PeriodStart: day(2024, 1, 1),
		PeriodEnd:   day(2024, 2, 1),
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkCalculated(ctx, db, period.ID, fake.Now(), "tester", domain.Aggregates{}))

	first, err := svc.Lock(ctx, period.ID, "alice")
	require.NoError(t, err)
	require.False(t, first.AlreadyLocked)
	require.Equal(t, domain.StatusLocked, first.Period.Status)
	require.NotNil(t, first.Period.LockedAt)
	lockedAt := *first.Period.LockedAt

	fake.Advance(time.Hour)
	second, err := svc.Lock(ctx, period.ID, "bob")
	require.NoError(t, err)
	require.True(t, second.AlreadyLocked)
	require.Equal(t, domain.StatusLocked, second.Period.Status)
	require.NotNil(t, second.Period.LockedAt)
	require.Equal(t, lockedAt.Unix(), second.Period.LockedAt.Unix())
	require.Equal(t, "alice", second.Period.LockedBy)
}

func TestLockNotFound(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t)

	_, err := svc.Lock(context.Background(), mustNode(t).Generate(), "tester")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}
