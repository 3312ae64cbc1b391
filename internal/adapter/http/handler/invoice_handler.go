package handler

import (
	"strings"

	"crypto-payments/internal/adapter/http/dto"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoices   ports.InvoiceService
	reconciler ports.PaymentReconciler
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices ports.InvoiceService, reconciler ports.PaymentReconciler) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:   invoices,
		reconciler: reconciler,
	}
}

// CreateFiat handles POST /api/v1/invoices/fiat.
func (h *InvoiceHandler) CreateFiat(c *gin.Context) {
	var req dto.FiatInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.invoices.CreateFiatInvoice(c.Request.Context(), ports.FiatInvoiceRequest{
		UserID:       req.UserID,
		Network:      req.Network,
		FiatAmount:   req.FiatAmount,
		FiatCurrency: strings.ToUpper(req.FiatCurrency),
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewInvoiceResponse(inv))
}

// CreateCrypto handles POST /api/v1/invoices/crypto.
func (h *InvoiceHandler) CreateCrypto(c *gin.Context) {
	var req dto.CryptoInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.invoices.CreateCryptoInvoice(c.Request.Context(), ports.CryptoInvoiceRequest{
		UserID:          req.UserID,
		Network:         req.Network,
		CryptoAmount:    req.CryptoAmount,
		CryptoCurrency:  strings.ToUpper(req.CryptoCurrency),
		ContractAddress: req.ContractAddress,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewInvoiceResponse(inv))
}

// Check handles GET /api/v1/invoices/:id. It reconciles the invoice against the chain first.
func (h *InvoiceHandler) Check(c *gin.Context) {
	id, err := parseInvoiceID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.reconciler.CheckInvoiceStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewInvoiceResponse(inv))
}

// Status handles GET /api/v1/invoices/:id/status.
func (h *InvoiceHandler) Status(c *gin.Context) {
	id, err := parseInvoiceID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	status, err := h.invoices.GetInvoiceStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.InvoiceStatusResponse{ID: id.String(), Status: string(status)})
}

// ListByUser handles GET /api/v1/users/:user_id/invoices.
func (h *InvoiceHandler) ListByUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	invoices, err := h.invoices.ListUserInvoices(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = dto.NewInvoiceResponse(&invoices[i])
	}
	response.OK(c, dto.InvoiceListResponse{Items: items, Total: len(items)})
}
