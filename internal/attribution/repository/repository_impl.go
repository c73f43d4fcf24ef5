package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/revshare/internal/attribution/domain"
	"gorm.io/gorm"
)

type stream struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Stream {
	return &stream{db: db}
}

func (r *stream) ListAttributed(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_code, organization_id, attributed_at, metadata, created_at
		 FROM attribution_events
		 WHERE partner_code IS NOT NULL AND partner_code <> ''
		   AND attributed_at >= ? AND attributed_at < ?
		 ORDER BY attributed_at ASC, id ASC`,
		from,
		to,
	).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
