package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/revshare/internal/partner/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDirectory(t *testing.T) (domain.Directory, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Partner{}, &domain.Agreement{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return Provide(db), db, node
}

// An inactive partner must round-trip as inactive. Writing false through the
// model is how the calculator's skip rule gets its input, so the model must
// not let the column default swallow the zero value.
func TestDirectoryPersistsInactiveFlag(t *testing.T) {
	dir, db, node := setupDirectory(t)
	ctx := context.Background()

	dormant := &domain.Partner{
		ID:                  node.Generate(),
		Code:                "dormant",
		Name:                "Dormant Ltd",
		IsActive:            false,
		DefaultSharePercent: 10,
		CreatedAt:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(dormant).Error)

	stored, err := dir.FindByCode(ctx, "dormant")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.False(t, stored.IsActive)

	active := &domain.Partner{
		ID:                  node.Generate(),
		Code:                "acme",
		Name:                "Acme",
		IsActive:            true,
		DefaultSharePercent: 10,
		CreatedAt:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(active).Error)

	stored, err = dir.FindByID(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, stored.IsActive)
}

func TestFindAgreementAtPicksLatestStartingWindow(t *testing.T) {
	dir, db, node := setupDirectory(t)
	ctx := context.Background()

	partnerID := node.Generate()
	early := &domain.Agreement{
		ID:            node.Generate(),
		PartnerID:     partnerID,
		SharePercent:  20,
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	late := &domain.Agreement{
		ID:            node.Generate(),
		PartnerID:     partnerID,
		SharePercent:  25,
		EffectiveFrom: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(early).Error)
	require.NoError(t, db.Create(late).Error)

	got, err := dir.FindAgreementAt(ctx, partnerID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, late.ID, got.ID)

	got, err = dir.FindAgreementAt(ctx, partnerID, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, early.ID, got.ID)

	got, err = dir.FindAgreementAt(ctx, partnerID, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Nil(t, got)
}
