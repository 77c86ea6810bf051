package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tillpoint/pos-backend/internal/dto"
	"github.com/tillpoint/pos-backend/internal/models"
)

// ExchangeRateSvcFacade resolves conversion rates with caching and provider
// fallback. Handlers and the transaction writer share one instance so both
// observe the same cache and TTL policy.
type ExchangeRateSvcFacade interface {
	// GetAllRates returns the rate table for base, from cache when fresh.
	GetAllRates(ctx context.Context, baseCurrency string) (*models.RateSnapshot, error)
	// GetRate returns the rate such that 1 from = rate to. from == to is
	// answered as 1 without touching the cache or the network.
	GetRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// TransactionSvcFacade is the ledger write/read surface used by handlers.
type TransactionSvcFacade interface {
	CreateTransaction(ctx context.Context, businessID, userID string, req dto.CreateTransactionRequest) (*models.LedgerEntry, error)
	GetTransaction(ctx context.Context, businessID, transactionID string) (*models.LedgerEntry, error)
	ListTransactions(ctx context.Context, businessID string, req dto.ListTransactionsRequest) ([]models.LedgerEntry, int64, error)
	DeleteTransaction(ctx context.Context, businessID, transactionID string) error
}
