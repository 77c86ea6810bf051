package models

import "time"

// ReceiptFormatStandard is the only format issued today. The column exists so
// businesses can later opt into thermal/A4 layouts without a schema change.
const ReceiptFormatStandard = "standard"

// Receipt is the human-facing counterpart of a Transaction (1:1). Receipt
// numbers are unique per business and assigned in non-decreasing order; the
// storage layer enforces both.
type Receipt struct {
	ReceiptID     string    `json:"receiptID"`
	TransactionID string    `json:"transactionID"`
	ReceiptNumber int64     `json:"receiptNumber"`
	Format        string    `json:"format"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LedgerEntry pairs a transaction with its receipt. The two are co-owned by
// the store and only ever become visible together.
type LedgerEntry struct {
	Transaction Transaction `json:"transaction"`
	Receipt     Receipt     `json:"receipt"`
}
