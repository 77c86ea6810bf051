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
)

// RatesHandler serves the conversion preview used by the till UI. It shares
// the resolver instance with the write path, so both see one cache and TTL.
type RatesHandler struct {
	businessRepo ports.BusinessRepository
	rateService  ports.ExchangeRateSvcFacade
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(businessRepo ports.BusinessRepository, rateService ports.ExchangeRateSvcFacade) *RatesHandler {
	return &RatesHandler{businessRepo: businessRepo, rateService: rateService}
}

// GetRates godoc
// @Summary Current exchange rates for the business's base currency
// @Description Returns 1 base = rates[X] X for every known currency; served from cache within the TTL
// @Tags transactions
// @Produce  json
// @Success 200 {object} dto.RatesResponse
// @Failure 503 {object} map[string]string "No provider reachable and no cached rates"
// @Router /transactions/rates [get]
func (h *RatesHandler) GetRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	business, err := h.businessRepo.FindBusinessByID(c.Request.Context(), businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		logger.Error("Failed to load business for rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch exchange rates."})
		return
	}

	snapshot, err := h.rateService.GetAllRates(c.Request.Context(), business.BaseCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rates temporarily unavailable. Try again later."})
			return
		}
		logger.Error("Failed to fetch exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch exchange rates."})
		return
	}

	c.JSON(http.StatusOK, dto.ToRatesResponse(*snapshot))
}
