package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revshare/internal/partner/domain"
	"gorm.io/gorm"
)

type directory struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Directory {
	return &directory{db: db}
}

func (r *directory) FindByCode(ctx context.Context, code string) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, code, name, is_active, default_share_percent, created_at
		 FROM partners WHERE code = ?`,
		code,
	).Scan(&partner).Error
	if err != nil {
		return nil, err
	}
	if partner.ID == 0 {
		return nil, nil
	}
	return &partner, nil
}

func (r *directory) FindByID(ctx context.Context, id snowflake.ID) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, code, name, is_active, default_share_percent, created_at
		 FROM partners WHERE id = ?`,
		id,
	).Scan(&partner).Error
	if err != nil {
		return nil, err
	}
	if partner.ID == 0 {
		return nil, nil
	}
	return &partner, nil
}

func (r *directory) FindAgreementAt(ctx context.Context, partnerID snowflake.ID, at time.Time) (*domain.Agreement, error) {
	var agreement domain.Agreement
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_id, share_percent, effective_from, effective_to, created_at
		 FROM partner_agreements
		 WHERE partner_id = ?
		   AND effective_from <= ?
		   AND (effective_to IS NULL OR effective_to > ?)
		 ORDER BY effective_from DESC
		 LIMIT 1`,
		partnerID,
		at,
		at,
	).Scan(&agreement).Error
	if err != nil {
		return nil, err
	}
	if agreement.ID == 0 {
		return nil, nil
	}
	return &agreement, nil
}
