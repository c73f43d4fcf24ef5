package repository

import (
	"context"

	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() auditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *auditdomain.AuditLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (id, actor_id, action, target_type, target_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.ActorID,
		log.Action,
		log.TargetType,
		log.TargetID,
		log.Metadata,
		log.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req auditdomain.ListRequest) ([]auditdomain.AuditLog, error) {
	var logs []auditdomain.AuditLog
	stmt := db.WithContext(ctx).Model(&auditdomain.AuditLog{})
	if req.Action != "" {
		stmt = stmt.Where("action = ?", req.Action)
	}
	if req.TargetType != "" {
		stmt = stmt.Where("target_type = ?", req.TargetType)
	}
	if req.TargetID != "" {
		stmt = stmt.Where("target_id = ?", req.TargetID)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(req.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
