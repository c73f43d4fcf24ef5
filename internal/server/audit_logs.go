package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"github.com/smallbiznis/revshare/pkg/db/pagination"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	page = page.Normalize()

	logs, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
