package dto

import "github.com/tillpoint/pos-backend/internal/models"

// RatesResponse is the body of GET /transactions/rates: the full rate table
// for the caller's business base currency, used by the till UI to preview a
// conversion before submitting. Stale is set when every upstream provider
// failed and the snapshot outlived its TTL.
type RatesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
	Stale bool               `json:"stale,omitempty"`
}

// ToRatesResponse maps a cached snapshot to its wire shape.
func ToRatesResponse(s models.RateSnapshot) RatesResponse {
	return RatesResponse{Base: s.Base, Rates: s.Rates, Stale: s.Stale}
}
