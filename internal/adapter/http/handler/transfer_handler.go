package handler

import (
	"crypto-payments/internal/adapter/http/dto"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles outgoing transfers.
type TransferHandler struct {
	transfers ports.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfers ports.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	txHash, err := h.transfers.Transfer(c.Request.Context(), ports.TransferRequest{
		UserID:    req.UserID,
		Network:   req.Network,
		ToAddress: req.ToAddress,
		Amount:    req.Amount,
		Options:   ports.TransferOptions(req.Options),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{TxHash: txHash})
}
