// Package providers contains the upstream exchange-rate sources. Both free
// endpoints return the full rate table for a base currency in one call and
// require no API key.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const exchangeRateAPIBaseURL = "https://api.exchangerate-api.com/v4/latest"

// ExchangeRateAPIProvider fetches rates from exchangerate-api.com, the
// primary source.
type ExchangeRateAPIProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type exchangeRateAPIResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewExchangeRateAPIProvider creates the primary provider.
func NewExchangeRateAPIProvider(timeout time.Duration, logger *slog.Logger) *ExchangeRateAPIProvider {
	return &ExchangeRateAPIProvider{
		baseURL:    exchangeRateAPIBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name identifies the provider in logs.
func (p *ExchangeRateAPIProvider) Name() string { return "exchangerate-api" }

// FetchRates returns the rate table such that 1 baseCurrency = rates[X] X.
func (p *ExchangeRateAPIProvider) FetchRates(ctx context.Context, baseCurrency string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, strings.ToUpper(baseCurrency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", p.Name(), err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned status %d: %s", p.Name(), resp.StatusCode, string(body))
	}

	var apiResp exchangeRateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", p.Name(), err)
	}

	if len(apiResp.Rates) == 0 {
		return nil, fmt.Errorf("%s returned no rates for %s", p.Name(), baseCurrency)
	}

	return apiResp.Rates, nil
}
