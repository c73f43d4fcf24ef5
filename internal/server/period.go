package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/pkg/db/pagination"
)

func (s *Server) CreatePeriod(c *gin.Context) {
	var req perioddomain.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	period, err := s.periodSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, period)
}

func (s *Server) ListPeriods(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	page = page.Normalize()

	status := perioddomain.Status(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	switch status {
	case "", perioddomain.StatusOpen, perioddomain.StatusCalculated, perioddomain.StatusLocked:
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	periods, err := s.periodSvc.List(c.Request.Context(), perioddomain.ListPeriodsRequest{
		Status: status,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (s *Server) GetOpenPeriod(c *gin.Context) {
	period, err := s.periodSvc.GetOpen(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

func (s *Server) GetPeriodByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	period, err := s.periodSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

func (s *Server) LockPeriod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := s.periodSvc.Lock(c.Request.Context(), id, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
