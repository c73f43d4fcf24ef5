package server

import (
	"net/http"
	"testing"

	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"github.com/stretchr/testify/require"
)

func TestMapErrorStatusAndCode(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{perioddomain.ErrMissingRequired, http.StatusBadRequest, "MISSING_REQUIRED"},
		{perioddomain.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{settlementdomain.ErrUnsupportedFormat, http.StatusBadRequest, "INVALID_EXPORT_FORMAT"},
		{perioddomain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{settlementdomain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{perioddomain.ErrPeriodOverlap, http.StatusConflict, "PERIOD_OVERLAP"},
		{perioddomain.ErrOpenPeriodExists, http.StatusConflict, "OPEN_PERIOD_EXISTS"},
		{perioddomain.ErrPeriodLocked, http.StatusConflict, "PERIOD_LOCKED"},
		{perioddomain.ErrNotCalculated, http.StatusConflict, "NOT_CALCULATED"},
		{settlementdomain.ErrSamePeriod, http.StatusConflict, "SAME_PERIOD"},
		{perioddomain.ErrConcurrentUpdate, http.StatusConflict, "CONFLICT"},
	}

	for _, tc := range cases {
		status, payload := mapError(tc.err)
		require.Equal(t, tc.wantStatus, status, "err=%v", tc.err)
		require.Equal(t, tc.wantCode, payload.Code, "err=%v", tc.err)
	}
}

func TestMapErrorUnknownIsInternal(t *testing.T) {
	status, payload := mapError(ErrInternal)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal_error", payload.Type)
}
