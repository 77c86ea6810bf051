package models

import "time"

// RateSnapshot is one cached upstream fetch for a base currency:
// 1 Base = Rates[X] X. Snapshots are derived state, overwritten on every
// successful refresh and rebuildable from the provider at any time.
// Stale marks a snapshot served past its TTL because every provider failed.
type RateSnapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Stale     bool               `json:"stale,omitempty"`
}
