package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	partnerdomain "github.com/smallbiznis/revshare/internal/partner/domain"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    strings.ToUpper(errorCode(err)),
			Message: "validation error",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    "NOT_FOUND",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    strings.ToUpper(errorCode(err)),
			Message: "conflict",
		}
	case errors.Is(err, settlementdomain.ErrStatementDisabled):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, perioddomain.ErrMissingRequired),
		errors.Is(err, perioddomain.ErrInvalidDateRange),
		errors.Is(err, settlementdomain.ErrMissingRequired),
		errors.Is(err, settlementdomain.ErrUnsupportedFormat):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, perioddomain.ErrNotFound),
		errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, settlementdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, perioddomain.ErrPeriodOverlap),
		errors.Is(err, perioddomain.ErrOpenPeriodExists),
		errors.Is(err, perioddomain.ErrPeriodLocked),
		errors.Is(err, perioddomain.ErrNotCalculated),
		errors.Is(err, perioddomain.ErrConcurrentUpdate),
		errors.Is(err, settlementdomain.ErrSamePeriod):
		return true
	default:
		return false
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, perioddomain.ErrMissingRequired),
		errors.Is(err, settlementdomain.ErrMissingRequired):
		return "missing_required"
	case errors.Is(err, perioddomain.ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, settlementdomain.ErrUnsupportedFormat):
		return "invalid_export_format"
	case errors.Is(err, perioddomain.ErrPeriodOverlap):
		return "period_overlap"
	case errors.Is(err, perioddomain.ErrOpenPeriodExists):
		return "open_period_exists"
	case errors.Is(err, perioddomain.ErrPeriodLocked):
		return "period_locked"
	case errors.Is(err, perioddomain.ErrNotCalculated):
		return "not_calculated"
	case errors.Is(err, settlementdomain.ErrSamePeriod):
		return "same_period"
	case errors.Is(err, perioddomain.ErrConcurrentUpdate):
		return "conflict"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return ""
	}
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusConflict:
		return "conflict", strings.ToLower(payload.Code)
	case status == http.StatusNotFound:
		return "not_found", "not_found"
	default:
		return "client", strings.ToLower(payload.Code)
	}
}
