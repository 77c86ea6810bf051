package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/models"
)

// ExchangeRateService resolves conversion rates. Lookup order: cache entry
// younger than the TTL, then each provider in order, then the stale cache
// entry as a last resort. The cache and TTL are injected so the write path
// and the rates endpoint share one policy, and so tests control time.
//
// Concurrent callers missing the cache for the same base may each fetch
// upstream; the last write wins and both results are equally valid, so no
// coalescing is done.
type ExchangeRateService struct {
	providers []ports.ExchangeRateProvider
	cache     ports.RateCache
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewExchangeRateService creates a resolver over the given providers, tried
// in order on every cache miss.
func NewExchangeRateService(providers []ports.ExchangeRateProvider, cache ports.RateCache, ttl time.Duration, logger *slog.Logger) *ExchangeRateService {
	return &ExchangeRateService{
		providers: providers,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *ExchangeRateService) WithClock(now func() time.Time) *ExchangeRateService {
	s.now = now
	return s
}

var _ ports.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)

// GetAllRates returns the rate table for base: 1 base = rates[X] X.
func (s *ExchangeRateService) GetAllRates(ctx context.Context, baseCurrency string) (*models.RateSnapshot, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if base == "" {
		return nil, apperrors.Validationf("base currency is required")
	}

	if snap, ok := s.cache.Get(base); ok && s.now().Sub(snap.FetchedAt) < s.ttl {
		return &snap, nil
	}

	for _, provider := range s.providers {
		rates, err := provider.FetchRates(ctx, base)
		if err != nil {
			s.logger.Warn("Rate provider failed",
				slog.String("provider", provider.Name()),
				slog.String("base", base),
				slog.String("error", err.Error()))
			continue
		}

		snap := models.RateSnapshot{Base: base, Rates: rates, FetchedAt: s.now()}
		s.cache.Set(snap)
		s.logger.Debug("Rates refreshed",
			slog.String("provider", provider.Name()),
			slog.String("base", base),
			slog.Int("count", len(rates)))
		return &snap, nil
	}

	// Every provider failed; a stale snapshot still beats no answer.
	if snap, ok := s.cache.Get(base); ok {
		snap.Stale = true
		s.logger.Warn("Serving stale rates, all providers failed",
			slog.String("base", base),
			slog.Time("fetched_at", snap.FetchedAt))
		return &snap, nil
	}

	return nil, fmt.Errorf("%w: no rates for %s", apperrors.ErrRateUnavailable, base)
}

// GetRate returns the rate such that 1 from = rate to.
func (s *ExchangeRateService) GetRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	if from == "" || to == "" {
		return decimal.Zero, apperrors.Validationf("currency codes are required")
	}

	if from == to {
		return decimal.NewFromInt(1), nil
	}

	snap, err := s.GetAllRates(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}

	rate, ok := snap.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s -> %s", apperrors.ErrRateUnavailable, from, to)
	}

	return decimal.NewFromFloat(rate), nil
}
