package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists every accepted value, in the order surfaced to callers.
var PaymentMethods = []PaymentMethod{
	PaymentCash, PaymentCard, PaymentMobileMoney, PaymentBankTransfer, PaymentOther,
}

// IsValid reports whether m is one of the enumerated payment methods.
func (m PaymentMethod) IsValid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// LineItem is a single sold item on a transaction. Order is insertion order
// and is preserved for display; it does not affect the total.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`  // > 0, fractional allowed (weighed goods)
	UnitPrice decimal.Decimal `json:"unitPrice"` // >= 0, in the payment currency
}

// Transaction is one immutable point-of-sale ledger entry. Total is always in
// the business's base currency. For a foreign payment CurrencyCode,
// OriginalTotal and ExchangeRate are all set; for a same-currency payment all
// three are nil. A partial combination is never persisted.
type Transaction struct {
	TransactionID    string           `json:"transactionID"`
	BusinessID       string           `json:"businessID"`
	RecordedByUserID string           `json:"recordedByUserID"`
	Items            []LineItem       `json:"items"`
	Total            decimal.Decimal  `json:"total"` // base currency, 2 decimals
	PaymentMethod    PaymentMethod    `json:"paymentMethod"`
	CurrencyCode     *string          `json:"currencyCode"`  // payment currency when foreign
	OriginalTotal    *decimal.Decimal `json:"originalTotal"` // pre-conversion total in CurrencyCode
	ExchangeRate     *decimal.Decimal `json:"exchangeRate"`  // 1 CurrencyCode = ExchangeRate base units
	CreatedAt        time.Time        `json:"createdAt"`
}

// IsForeignPayment reports whether the entry was paid in a currency other
// than the business's base currency.
func (t Transaction) IsForeignPayment() bool {
	return t.CurrencyCode != nil
}
