package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
)

func (s *Server) CalculateSettlements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := s.settlementSvc.Calculate(c.Request.Context(), id, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ListPeriodSettlements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := s.settlementSvc.ListPeriodLineItems(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"line_items": items})
}

type createAdjustmentRequest struct {
	OriginalLineItemID int64  `json:"original_line_item_id,string"`
	TargetPeriodID     int64  `json:"target_period_id,string"`
	Amount             int64  `json:"amount"`
	Reason             string `json:"reason"`
}

func (s *Server) CreateAdjustment(c *gin.Context) {
	var req createAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.settlementSvc.CreateAdjustment(c.Request.Context(), settlementdomain.CreateAdjustmentRequest{
		OriginalLineItemID: snowflakeID(req.OriginalLineItemID),
		TargetPeriodID:     snowflakeID(req.TargetPeriodID),
		AmountMinor:        req.Amount,
		Reason:             req.Reason,
		ActorID:            actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (s *Server) ExportSettlements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	format := settlementdomain.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(settlementdomain.ExportFormatStructured)))))

	file, err := s.settlementSvc.Export(c.Request.Context(), id, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func (s *Server) GetPartnerReport(c *gin.Context) {
	partnerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	periodID, ok := parseIDQuery(c, "period_id")
	if !ok {
		return
	}

	report, err := s.settlementSvc.PartnerReport(c.Request.Context(), partnerID, periodID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) GetPartnerHistory(c *gin.Context) {
	partnerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := s.settlementSvc.PartnerHistory(c.Request.Context(), partnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (s *Server) GetPartnerStatement(c *gin.Context) {
	partnerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	periodID, ok := parseIDQuery(c, "period_id")
	if !ok {
		return
	}

	file, err := s.settlementSvc.PartnerStatement(c.Request.Context(), partnerID, periodID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
