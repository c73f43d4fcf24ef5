package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Amount is a resolved revenue figure in currency minor units.
type Amount struct {
	AmountMinor int64
	Currency    string
}

// Lookup resolves the revenue owed for an organization at a point in time.
// Implementations may call out to a remote revenue system; callers must not
// hold locks across this call.
type Lookup interface {
	// AmountAt returns the amount owed at the instant, zero when none.
	AmountAt(ctx context.Context, organizationID snowflake.ID, at time.Time) (Amount, error)
}
