package repository

import (
	"context"
	"time"
)

// AWSRepository defines the account-level AWS calls made around a sync.
type AWSRepository interface {
	// GetAccountID returns the account of the credentials in use.
	GetAccountID(ctx context.Context) (string, error)
	// GetBilledCost returns the unblended cost billed between start (inclusive)
	// and end (exclusive), as reported by Cost Explorer.
	GetBilledCost(ctx context.Context, start, end time.Time) (float64, error)
}
