package ports

import (
	"context"

	"github.com/tillpoint/pos-backend/internal/models"
)

// ExchangeRateProvider fetches the full rate table for a base currency from
// one upstream source: 1 base = rates[X] X. Implementations do network I/O
// and must honour ctx cancellation.
type ExchangeRateProvider interface {
	Name() string
	FetchRates(ctx context.Context, baseCurrency string) (map[string]float64, error)
}

// RateCache stores one snapshot per uppercased base currency. Entries are
// overwritten on refresh and never explicitly deleted; freshness is judged by
// the caller against the snapshot's FetchedAt, so an expired entry stays
// retrievable for the serve-stale-on-error path. Implementations must be safe
// for concurrent use.
type RateCache interface {
	Get(baseCurrency string) (models.RateSnapshot, bool)
	Set(snapshot models.RateSnapshot)
}
