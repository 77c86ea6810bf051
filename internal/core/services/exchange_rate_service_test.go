package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/core/services"
	"github.com/tillpoint/pos-backend/internal/ratecache"
)

// --- Mock ExchangeRateProvider ---
type MockRateProvider struct {
	mock.Mock
	name string
}

func (m *MockRateProvider) Name() string { return m.name }

func (m *MockRateProvider) FetchRates(ctx context.Context, baseCurrency string) (map[string]float64, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	primary  *MockRateProvider
	fallback *MockRateProvider
	cache    *ratecache.MemoryCache
	service  *services.ExchangeRateService
	now      time.Time
	ttl      time.Duration
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.primary = &MockRateProvider{name: "primary"}
	suite.fallback = &MockRateProvider{name: "fallback"}
	suite.cache = ratecache.NewMemoryCache()
	suite.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.ttl = 10 * time.Minute

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.service = services.NewExchangeRateService(
		[]ports.ExchangeRateProvider{suite.primary, suite.fallback},
		suite.cache,
		suite.ttl,
		logger,
	).WithClock(func() time.Time { return suite.now })
}

func (suite *ExchangeRateServiceTestSuite) advance(d time.Duration) {
	suite.now = suite.now.Add(d)
}

func usdRates() map[string]float64 {
	return map[string]float64{"USD": 1, "EUR": 0.92, "NGN": 1550}
}

func (suite *ExchangeRateServiceTestSuite) TestGetAllRates_CacheHitWithinTTL() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	first, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal("USD", first.Base)
	suite.False(first.Stale)

	// A second call inside the TTL window must not hit the provider again.
	suite.advance(suite.ttl - time.Second)
	second, err := suite.service.GetAllRates(ctx, "usd")
	suite.Require().NoError(err)
	suite.Equal(first.Rates, second.Rates)

	suite.primary.AssertNumberOfCalls(suite.T(), "FetchRates", 1)
	suite.fallback.AssertNotCalled(suite.T(), "FetchRates", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetAllRates_RefetchesAfterTTL() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Twice()

	_, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)

	suite.advance(suite.ttl + time.Second)
	snap, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal(suite.now, snap.FetchedAt)

	suite.primary.AssertNumberOfCalls(suite.T(), "FetchRates", 2)
}

func (suite *ExchangeRateServiceTestSuite) TestGetAllRates_FallbackWhenPrimaryFails() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "USD").Return(nil, errors.New("upstream 500")).Once()
	suite.fallback.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	snap, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal(1550.0, snap.Rates["NGN"])
	suite.False(snap.Stale)

	suite.primary.AssertExpectations(suite.T())
	suite.fallback.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetAllRates_ServesStaleWhenAllProvidersFail() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	_, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)
	fetchedAt := suite.now

	suite.advance(suite.ttl + time.Minute)
	suite.primary.On("FetchRates", ctx, "USD").Return(nil, errors.New("down")).Once()
	suite.fallback.On("FetchRates", ctx, "USD").Return(nil, errors.New("down")).Once()

	snap, err := suite.service.GetAllRates(ctx, "USD")
	suite.Require().NoError(err)
	suite.True(snap.Stale)
	suite.Equal(fetchedAt, snap.FetchedAt)
	suite.Equal(usdRates(), snap.Rates)
}

func (suite *ExchangeRateServiceTestSuite) TestGetAllRates_UnavailableWhenAllFailAndNoCache() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "USD").Return(nil, errors.New("down")).Once()
	suite.fallback.On("FetchRates", ctx, "USD").Return(nil, errors.New("down")).Once()

	snap, err := suite.service.GetAllRates(ctx, "USD")
	suite.Nil(snap)
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_SameCurrencyShortCircuits() {
	rate, err := suite.service.GetRate(context.Background(), "EUR", "EUR")
	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))

	suite.primary.AssertNotCalled(suite.T(), "FetchRates", mock.Anything, mock.Anything)
	suite.fallback.AssertNotCalled(suite.T(), "FetchRates", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_ResolvesThroughBaseTable() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "EUR").Return(map[string]float64{"USD": 1.08}, nil).Once()

	rate, err := suite.service.GetRate(ctx, "eur", "usd")
	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromFloat(1.08)), "got %s", rate)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_UnknownCodeUnavailable() {
	ctx := context.Background()
	suite.primary.On("FetchRates", ctx, "EUR").Return(map[string]float64{"USD": 1.08}, nil).Once()

	_, err := suite.service.GetRate(ctx, "EUR", "XXX")
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
