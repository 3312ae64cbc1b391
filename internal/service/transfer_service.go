package service

import (
	"context"
	"fmt"

	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/apperror"

	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService.
type TransferServiceImpl struct {
	wallets  ports.WalletProvisioner
	clients  ports.NetworkClients
	security ports.SecurityProvider
	log      zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	wallets ports.WalletProvisioner,
	clients ports.NetworkClients,
	security ports.SecurityProvider,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		wallets:  wallets,
		clients:  clients,
		security: security,
		log:      log,
	}
}

// Transfer sends amount from the user's wallet on req.Network and returns the
// network's transaction hash unmodified. A failure is returned once and never retried.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", apperror.Validation("amount must be positive")
	}
	if req.ToAddress == "" {
		return "", apperror.Validation("to_address is required")
	}

	client, ok := s.clients[req.Network]
	if !ok {
		return "", apperror.ErrUnsupportedNetwork(req.Network)
	}

	wallet, err := s.wallets.GetOrCreateWallet(ctx, req.UserID, req.Network)
	if err != nil {
		return "", err
	}

	key, err := s.security.DecryptBytes(wallet.PrivateKeyEncrypted)
	if err != nil {
		return "", apperror.ErrDecryptionFailed(fmt.Errorf("decrypt private key: %w", err))
	}

	txHash, err := client.TransferAmount(ctx, string(key), req.ToAddress, req.Amount, req.Options)
	if err != nil {
		return "", apperror.ErrTransferFailed(fmt.Errorf("transfer on %s: %w", req.Network, err))
	}

	s.log.Info().
		Int64("user_id", req.UserID).
		Str("network", req.Network).
		Str("from", wallet.Address).
		Str("to", req.ToAddress).
		Str("amount", req.Amount.String()).
		Str("tx_hash", txHash).
		Msg("transfer sent")

	return txHash, nil
}
