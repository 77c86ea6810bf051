package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/models"
)

// retryBackoff spaces sequencer retries; attempt n sleeps n*retryBackoff.
const retryBackoff = 25 * time.Millisecond

// PgxTransactionRepository persists ledger entries and owns receipt number
// assignment. The per-business counter row is bumped inside the same database
// transaction that inserts the entry and its receipt, so an abort rolls all
// three back together and concurrent writers for one business serialize on
// the counter row lock. The unique index on (business_id, receipt_number) is
// the backstop: a violation burns the attempt and a bounded retry recomputes
// a fresh number.
type PgxTransactionRepository struct {
	BaseRepository
	maxRetries int
}

// NewTransactionRepository creates a new repository for transaction and
// receipt data. maxRetries bounds the sequencer conflict retry loop.
func NewTransactionRepository(pool *pgxpool.Pool, maxRetries int) *PgxTransactionRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		maxRetries:     maxRetries,
	}
}

var _ ports.TransactionRepository = (*PgxTransactionRepository)(nil)

// SaveTransactionWithReceipt persists the transaction and its receipt as one
// atomic unit, assigning the next receipt number for the business.
func (r *PgxTransactionRepository) SaveTransactionWithReceipt(ctx context.Context, txn models.Transaction, receiptFormat string) (*models.LedgerEntry, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		entry, err := r.trySave(ctx, txn, receiptFormat)
		if err == nil {
			return entry, nil
		}
		if !isRetryableConflict(err) {
			return nil, fmt.Errorf("%w: failed to save transaction: %w", apperrors.ErrStorageUnavailable, err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: canceled while retrying: %w", apperrors.ErrStorageUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts: %w", apperrors.ErrSequenceConflict, r.maxRetries, lastErr)
}

func (r *PgxTransactionRepository) trySave(ctx context.Context, txn models.Transaction, receiptFormat string) (*models.LedgerEntry, error) {
	itemsJSON, err := json.Marshal(txn.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// The upsert takes a row lock on the counter, serializing concurrent
	// writers for this business across all server instances.
	var receiptNumber int64
	counterQuery := `
		INSERT INTO receipt_counters (business_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (business_id)
		DO UPDATE SET last_number = receipt_counters.last_number + 1
		RETURNING last_number;
	`
	if err := tx.QueryRow(ctx, counterQuery, txn.BusinessID).Scan(&receiptNumber); err != nil {
		return nil, fmt.Errorf("failed to advance receipt counter for business %s: %w", txn.BusinessID, err)
	}

	txnQuery := `
		INSERT INTO transactions (
			transaction_id, business_id, recorded_by_user_id, items, total,
			payment_method, currency_code, original_total, exchange_rate, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, txnQuery,
		txn.TransactionID,
		txn.BusinessID,
		txn.RecordedByUserID,
		itemsJSON,
		txn.Total,
		string(txn.PaymentMethod),
		txn.CurrencyCode,
		txn.OriginalTotal,
		txn.ExchangeRate,
		txn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	receipt := models.Receipt{
		ReceiptID:     uuid.NewString(),
		TransactionID: txn.TransactionID,
		ReceiptNumber: receiptNumber,
		Format:        receiptFormat,
		CreatedAt:     txn.CreatedAt,
	}
	receiptQuery := `
		INSERT INTO receipts (receipt_id, transaction_id, business_id, receipt_number, format, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, receiptQuery,
		receipt.ReceiptID,
		receipt.TransactionID,
		txn.BusinessID,
		receipt.ReceiptNumber,
		receipt.Format,
		receipt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert receipt for transaction %s: %w", txn.TransactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
	}

	return &models.LedgerEntry{Transaction: txn, Receipt: receipt}, nil
}

const ledgerSelectColumns = `
	t.transaction_id, t.business_id, t.recorded_by_user_id, t.items, t.total,
	t.payment_method, t.currency_code, t.original_total, t.exchange_rate, t.created_at,
	r.receipt_id, r.receipt_number, r.format, r.created_at
`

// FindTransactionByID returns one entry scoped to the business, or
// apperrors.ErrNotFound.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, businessID, transactionID string) (*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerSelectColumns + `
		FROM transactions t
		JOIN receipts r ON r.transaction_id = t.transaction_id
		WHERE t.business_id = $1 AND t.transaction_id = $2;
	`
	row := r.Pool.QueryRow(ctx, query, businessID, transactionID)
	entry, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("%w: failed to find transaction %s: %w", apperrors.ErrStorageUnavailable, transactionID, err)
	}
	return entry, nil
}

// ListTransactions returns a page of entries for the business, newest first,
// plus the unpaged match count.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, businessID string, filter ports.ListTransactionsFilter) ([]models.LedgerEntry, int64, error) {
	where := "WHERE t.business_id = $1"
	args := []any{businessID}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where += " AND t.created_at >= $" + strconv.Itoa(len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where += " AND t.created_at <= $" + strconv.Itoa(len(args))
	}
	if filter.PaymentMethod != nil {
		args = append(args, string(*filter.PaymentMethod))
		where += " AND t.payment_method = $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions t " + where
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to count transactions: %w", apperrors.ErrStorageUnavailable, err)
	}

	args = append(args, filter.Limit)
	limitPos := strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPos := strconv.Itoa(len(args))

	query := `
		SELECT ` + ledgerSelectColumns + `
		FROM transactions t
		JOIN receipts r ON r.transaction_id = t.transaction_id
		` + where + `
		ORDER BY t.created_at DESC
		LIMIT $` + limitPos + ` OFFSET $` + offsetPos + `;
	`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list transactions: %w", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0, filter.Limit)
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan transaction row: %w", apperrors.ErrStorageUnavailable, err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: failed reading transaction rows: %w", apperrors.ErrStorageUnavailable, err)
	}

	return entries, total, nil
}

// DeleteTransaction removes the entry; the receipt row goes with it via the
// FK cascade. The consumed receipt number is never reissued because the
// counter only moves forward.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, businessID, transactionID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM transactions WHERE business_id = $1 AND transaction_id = $2;`,
		businessID, transactionID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to delete transaction %s: %w", apperrors.ErrStorageUnavailable, transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// scanLedgerEntry reads one joined transaction+receipt row.
func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var (
		entry         models.LedgerEntry
		itemsJSON     []byte
		currencyCode  sql.NullString
		originalTotal decimal.NullDecimal
		exchangeRate  decimal.NullDecimal
	)
	err := row.Scan(
		&entry.Transaction.TransactionID,
		&entry.Transaction.BusinessID,
		&entry.Transaction.RecordedByUserID,
		&itemsJSON,
		&entry.Transaction.Total,
		&entry.Transaction.PaymentMethod,
		&currencyCode,
		&originalTotal,
		&exchangeRate,
		&entry.Transaction.CreatedAt,
		&entry.Receipt.ReceiptID,
		&entry.Receipt.ReceiptNumber,
		&entry.Receipt.Format,
		&entry.Receipt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &entry.Transaction.Items); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}
	if currencyCode.Valid {
		entry.Transaction.CurrencyCode = &currencyCode.String
	}
	if originalTotal.Valid {
		entry.Transaction.OriginalTotal = &originalTotal.Decimal
	}
	if exchangeRate.Valid {
		entry.Transaction.ExchangeRate = &exchangeRate.Decimal
	}
	entry.Receipt.TransactionID = entry.Transaction.TransactionID
	return &entry, nil
}
