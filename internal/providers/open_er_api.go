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

const openERAPIBaseURL = "https://open.er-api.com/v6/latest"

// OpenERAPIProvider fetches rates from open.er-api.com, the fallback source
// tried when the primary fails.
type OpenERAPIProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type openERAPIResponse struct {
	Result   string             `json:"result"` // "success" on a good response
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// NewOpenERAPIProvider creates the fallback provider.
func NewOpenERAPIProvider(timeout time.Duration, logger *slog.Logger) *OpenERAPIProvider {
	return &OpenERAPIProvider{
		baseURL:    openERAPIBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name identifies the provider in logs.
func (p *OpenERAPIProvider) Name() string { return "open-er-api" }

// FetchRates returns the rate table such that 1 baseCurrency = rates[X] X.
func (p *OpenERAPIProvider) FetchRates(ctx context.Context, baseCurrency string) (map[string]float64, error) {
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

	var apiResp openERAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", p.Name(), err)
	}

	if apiResp.Result != "success" || len(apiResp.Rates) == 0 {
		return nil, fmt.Errorf("%s returned an unusable response for %s", p.Name(), baseCurrency)
	}

	return apiResp.Rates, nil
}
