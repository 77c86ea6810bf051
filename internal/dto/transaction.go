package dto

import (
	"time"

	"github.com/tillpoint/pos-backend/internal/models"
)

// LineItemRequest is one sold item as submitted by the till. Quantity and
// unit price arrive as JSON numbers; binding rejects non-numeric input and
// the service layer adds the position-indexed checks.
type LineItemRequest struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// CreateTransactionRequest is the body of POST /transactions. CurrencyCode is
// only needed when the payment was made in a currency other than the
// business's base currency.
type CreateTransactionRequest struct {
	Items         []LineItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	CurrencyCode  string            `json:"currencyCode"`
}

// ListTransactionsRequest carries the query filters of GET /transactions.
type ListTransactionsRequest struct {
	DateFrom      string `form:"dateFrom"`      // YYYY-MM-DD, inclusive
	DateTo        string `form:"dateTo"`        // YYYY-MM-DD, inclusive (whole day)
	PaymentMethod string `form:"paymentMethod"` // one of the enumerated methods
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// LineItemResponse mirrors LineItemRequest on the way out.
type LineItemResponse struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// TransactionResponse is the persisted ledger entry. Money fields are JSON
// numbers, never formatted strings; collaborators must treat Total as already
// expressed in the base currency and the three foreign-payment fields as
// audit-only.
type TransactionResponse struct {
	TransactionID    string             `json:"transactionID"`
	BusinessID       string             `json:"businessID"`
	RecordedByUserID string             `json:"recordedByUserID"`
	Items            []LineItemResponse `json:"items"`
	Total            float64            `json:"total"`
	PaymentMethod    string             `json:"paymentMethod"`
	CurrencyCode     *string            `json:"currencyCode"`
	OriginalTotal    *float64           `json:"originalTotal"`
	ExchangeRate     *float64           `json:"exchangeRate"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// ReceiptResponse is the receipt issued alongside a transaction.
type ReceiptResponse struct {
	ReceiptID     string `json:"receiptID"`
	TransactionID string `json:"transactionID"`
	ReceiptNumber int64  `json:"receiptNumber"`
	Format        string `json:"format"`
}

// CreateTransactionResponse is the 201 body of POST /transactions.
type CreateTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Receipt     ReceiptResponse     `json:"receipt"`
}

// ListTransactionsResponse pages through a business's ledger, newest first.
type ListTransactionsResponse struct {
	Transactions []CreateTransactionResponse `json:"transactions"`
	Total        int64                       `json:"total"`
	Limit        int                         `json:"limit"`
	Offset       int                         `json:"offset"`
}

// ToTransactionResponse maps a persisted entry to its wire shape.
func ToTransactionResponse(e models.LedgerEntry) CreateTransactionResponse {
	t := e.Transaction
	items := make([]LineItemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = LineItemResponse{
			Name:      it.Name,
			Quantity:  it.Quantity.InexactFloat64(),
			UnitPrice: it.UnitPrice.InexactFloat64(),
		}
	}
	resp := TransactionResponse{
		TransactionID:    t.TransactionID,
		BusinessID:       t.BusinessID,
		RecordedByUserID: t.RecordedByUserID,
		Items:            items,
		Total:            t.Total.InexactFloat64(),
		PaymentMethod:    string(t.PaymentMethod),
		CurrencyCode:     t.CurrencyCode,
		CreatedAt:        t.CreatedAt,
	}
	if t.OriginalTotal != nil {
		v := t.OriginalTotal.InexactFloat64()
		resp.OriginalTotal = &v
	}
	if t.ExchangeRate != nil {
		v := t.ExchangeRate.InexactFloat64()
		resp.ExchangeRate = &v
	}
	return CreateTransactionResponse{
		Transaction: resp,
		Receipt: ReceiptResponse{
			ReceiptID:     e.Receipt.ReceiptID,
			TransactionID: e.Receipt.TransactionID,
			ReceiptNumber: e.Receipt.ReceiptNumber,
			Format:        e.Receipt.Format,
		},
	}
}
