package ports

import (
	"context"
	"time"

	"github.com/tillpoint/pos-backend/internal/models"
)

// BusinessRepository reads tenant records. Businesses are mutated by an
// external admin surface, so no write methods are exposed here.
type BusinessRepository interface {
	FindBusinessByID(ctx context.Context, businessID string) (*models.Business, error)
}

// ListTransactionsFilter narrows ListTransactions. Zero values mean "no
// filter"; Limit is capped by the repository.
type ListTransactionsFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	PaymentMethod *models.PaymentMethod
	Limit         int
	Offset        int
}

// TransactionRepository persists ledger entries. SaveTransactionWithReceipt
// owns receipt number assignment: it must bump the per-business sequence,
// insert the transaction and its receipt in one database transaction, and
// guarantee that no two entries for the same business ever share a receipt
// number, even across server instances. On an exhausted retry budget it
// returns apperrors.ErrSequenceConflict and leaves no partial rows behind.
type TransactionRepository interface {
	SaveTransactionWithReceipt(ctx context.Context, txn models.Transaction, receiptFormat string) (*models.LedgerEntry, error)
	FindTransactionByID(ctx context.Context, businessID, transactionID string) (*models.LedgerEntry, error)
	ListTransactions(ctx context.Context, businessID string, filter ListTransactionsFilter) ([]models.LedgerEntry, int64, error)
	DeleteTransaction(ctx context.Context, businessID, transactionID string) error
}
