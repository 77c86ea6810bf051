package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/dto"
	"github.com/tillpoint/pos-backend/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TransactionService orchestrates the ledger write path: validation, currency
// resolution, and handoff to the repository which assigns the receipt number
// and persists transaction plus receipt atomically.
type TransactionService struct {
	businessRepo ports.BusinessRepository
	txnRepo      ports.TransactionRepository
	rateSvc      ports.ExchangeRateSvcFacade
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(businessRepo ports.BusinessRepository, txnRepo ports.TransactionRepository, rateSvc ports.ExchangeRateSvcFacade) *TransactionService {
	return &TransactionService{
		businessRepo: businessRepo,
		txnRepo:      txnRepo,
		rateSvc:      rateSvc,
	}
}

var _ ports.TransactionSvcFacade = (*TransactionService)(nil)

// CreateTransaction validates the request, converts a foreign-currency total
// into the business's base currency, and persists the entry with its receipt.
// Nothing is written until every check has passed, so a rejected request
// never consumes a receipt number.
func (s *TransactionService) CreateTransaction(ctx context.Context, businessID, userID string, req dto.CreateTransactionRequest) (*models.LedgerEntry, error) {
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if !method.IsValid() {
		return nil, apperrors.Validationf("paymentMethod must be one of: %s", joinPaymentMethods())
	}

	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load business %s: %w", businessID, err)
	}

	// Total in whatever currency the payment was made.
	rawTotal := decimal.Zero
	for _, item := range items {
		rawTotal = rawTotal.Add(item.Quantity.Mul(item.UnitPrice))
	}

	baseCurrency := strings.ToUpper(business.BaseCurrencyCode)
	paymentCurrency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if paymentCurrency == "" {
		paymentCurrency = baseCurrency
	}

	txn := models.Transaction{
		TransactionID:    uuid.NewString(),
		BusinessID:       businessID,
		RecordedByUserID: userID,
		Items:            items,
		Total:            rawTotal,
		PaymentMethod:    method,
		CreatedAt:        time.Now().UTC(),
	}

	if paymentCurrency != baseCurrency {
		rate, err := s.rateSvc.GetRate(ctx, paymentCurrency, baseCurrency)
		if err != nil {
			return nil, err
		}
		// Converted totals are money in the base currency: two decimals,
		// halves rounded away from zero.
		converted := rawTotal.Mul(rate).Round(2)
		txn.Total = converted
		txn.CurrencyCode = &paymentCurrency
		txn.OriginalTotal = &rawTotal
		txn.ExchangeRate = &rate
	}

	entry, err := s.txnRepo.SaveTransactionWithReceipt(ctx, txn, models.ReceiptFormatStandard)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetTransaction returns one ledger entry scoped to the caller's business.
func (s *TransactionService) GetTransaction(ctx context.Context, businessID, transactionID string) (*models.LedgerEntry, error) {
	return s.txnRepo.FindTransactionByID(ctx, businessID, transactionID)
}

// ListTransactions returns a page of the business's ledger, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, businessID string, req dto.ListTransactionsRequest) ([]models.LedgerEntry, int64, error) {
	filter := ports.ListTransactionsFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, 0, apperrors.Validationf("dateFrom must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, 0, apperrors.Validationf("dateTo must be YYYY-MM-DD")
		}
		// Inclusive whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}
	if req.PaymentMethod != "" {
		method := models.PaymentMethod(strings.ToUpper(req.PaymentMethod))
		if !method.IsValid() {
			return nil, 0, apperrors.Validationf("paymentMethod must be one of: %s", joinPaymentMethods())
		}
		filter.PaymentMethod = &method
	}

	return s.txnRepo.ListTransactions(ctx, businessID, filter)
}

// DeleteTransaction removes a ledger entry and, by cascade, its receipt. The
// caller is expected to have been role-gated already; the consumed receipt
// number is not reissued.
func (s *TransactionService) DeleteTransaction(ctx context.Context, businessID, transactionID string) error {
	return s.txnRepo.DeleteTransaction(ctx, businessID, transactionID)
}

// validateItems converts the request items to model items, rejecting the
// whole request with a position-indexed message on the first bad item.
func validateItems(items []dto.LineItemRequest) ([]models.LineItem, error) {
	if len(items) == 0 {
		return nil, apperrors.Validationf("at least one line item is required")
	}

	out := make([]models.LineItem, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, apperrors.Validationf("item %d: name is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, apperrors.Validationf("item %d: quantity must be a positive number", i+1)
		}
		if item.UnitPrice < 0 {
			return nil, apperrors.Validationf("item %d: unit price must be a non-negative number", i+1)
		}
		out[i] = models.LineItem{
			Name:      strings.TrimSpace(item.Name),
			Quantity:  decimal.NewFromFloat(item.Quantity),
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
		}
	}
	return out, nil
}

func joinPaymentMethods() string {
	parts := make([]string, len(models.PaymentMethods))
	for i, m := range models.PaymentMethods {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
