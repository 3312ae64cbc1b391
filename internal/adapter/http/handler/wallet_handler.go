package handler

import (
	"crypto-payments/internal/adapter/http/dto"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/apperror"
	"crypto-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	wallets ports.WalletProvisioner
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets ports.WalletProvisioner) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetOrCreate handles PUT /api/v1/users/:user_id/wallets/:network.
// Repeated calls return the same address.
func (h *WalletHandler) GetOrCreate(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	network := c.Param("network")
	if network == "" {
		response.Error(c, apperror.Validation("network is required"))
		return
	}

	wallet, err := h.wallets.GetOrCreateWallet(c.Request.Context(), userID, network)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}
