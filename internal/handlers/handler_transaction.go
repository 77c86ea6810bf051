package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/dto"
	"github.com/tillpoint/pos-backend/internal/middleware"
	"github.com/tillpoint/pos-backend/internal/models"
)

// TransactionHandler handles HTTP requests for the transaction ledger.
type TransactionHandler struct {
	txnService ports.TransactionSvcFacade
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnService ports.TransactionSvcFacade) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

// CreateTransaction godoc
// @Summary Record a point-of-sale transaction
// @Description Validates the line items, converts a foreign-currency payment into the business's base currency, assigns the next receipt number and persists transaction plus receipt atomically
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Line items, payment method, optional payment currency"
// @Success 201 {object} dto.CreateTransactionResponse
// @Failure 400 {object} map[string]string "Validation failure or unresolvable exchange rate"
// @Failure 500 {object} map[string]string "Persistence failure, safe to retry"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.txnService.CreateTransaction(c.Request.Context(), businessID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Transaction rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRateUnavailable):
			// Distinct reason so the till can offer resubmitting in the
			// base currency.
			logger.Warn("Exchange rate unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Could not fetch an exchange rate for the payment currency. Check the currency code or try again.",
				"reason": "rate_unavailable",
			})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Business not found for transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		default:
			// Sequence or storage failure: full detail stays in the logs,
			// callers get a generic retryable message.
			logger.Error("Failed to create transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction. Please try again."})
		}
		return
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", entry.Transaction.TransactionID),
		slog.Int64("receipt_number", entry.Receipt.ReceiptNumber))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(*entry))
}

// ListTransactions godoc
// @Summary List the business's transactions
// @Description Returns a page of ledger entries for the caller's business, newest first
// @Tags transactions
// @Produce  json
// @Param   dateFrom query string false "Inclusive lower bound, YYYY-MM-DD"
// @Param   dateTo query string false "Inclusive upper bound, YYYY-MM-DD"
// @Param   paymentMethod query string false "Filter by payment method"
// @Param   limit query int false "Page size, default 50, max 200"
// @Param   offset query int false "Page offset"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	entries, total, err := h.txnService.ListTransactions(c.Request.Context(), businessID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions."})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	resp := dto.ListTransactionsResponse{
		Transactions: make([]dto.CreateTransactionResponse, len(entries)),
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}
	for i, e := range entries {
		resp.Transactions[i] = dto.ToTransactionResponse(e)
	}
	c.JSON(http.StatusOK, resp)
}

// GetTransaction godoc
// @Summary Get one transaction with its receipt
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.CreateTransactionResponse
// @Failure 404 {object} map[string]string "Not found or outside the caller's business"
// @Router /transactions/{transactionID} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	transactionID := c.Param("transactionID")

	entry, err := h.txnService.GetTransaction(c.Request.Context(), businessID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found."})
			return
		}
		logger.Error("Failed to get transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transaction."})
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*entry))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Owner and manager only. The receipt is removed with the transaction; its number is never reissued.
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Insufficient role"
// @Failure 404 {object} map[string]string "Not found"
// @Router /transactions/{transactionID} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	transactionID := c.Param("transactionID")

	if err := h.txnService.DeleteTransaction(c.Request.Context(), businessID, transactionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found."})
			return
		}
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction."})
		return
	}

	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted."})
}

// DeleteRoles are the roles allowed to delete ledger entries.
var DeleteRoles = []string{string(models.RoleOwner), string(models.RoleManager)}
