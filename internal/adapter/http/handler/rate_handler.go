package handler

import (
	"crypto-payments/internal/adapter/http/dto"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateHandler exposes exchange rates to readers and the rate feed.
type RateHandler struct {
	rates ports.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rates ports.RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

// Get handles GET /api/v1/rates/:fiat/:crypto.
func (h *RateHandler) Get(c *gin.Context) {
	rate, err := h.rates.GetRate(c.Request.Context(), c.Param("fiat"), c.Param("crypto"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewRateResponse(rate))
}

// Upsert handles PUT /api/v1/rates.
func (h *RateHandler) Upsert(c *gin.Context) {
	var req dto.RateUpsertRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	rate, err := h.rates.UpsertRate(c.Request.Context(), ports.RateUpsertRequest{
		FiatCurrency:   req.FiatCurrency,
		CryptoCurrency: req.CryptoCurrency,
		Rate:           req.Rate,
		RevertedRate:   req.RevertedRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewRateResponse(rate))
}
