package models

import "time"

// Business represents a tenant. Each business has its own receipt number
// sequence and a base currency in which all ledger totals are expressed.
// Businesses are owned by an external admin surface; this core only reads them.
type Business struct {
	BusinessID       string    `json:"businessID"`
	Name             string    `json:"name"`
	BaseCurrencyCode string    `json:"baseCurrencyCode"` // e.g. "USD"
	CreatedAt        time.Time `json:"createdAt"`
}
