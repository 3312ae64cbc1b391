package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletProvisioner.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	clients    ports.NetworkClients
	security   ports.SecurityProvider
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	clients ports.NetworkClients,
	security ports.SecurityProvider,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		clients:    clients,
		security:   security,
		log:        log,
	}
}

// GetOrCreateWallet returns the wallet of (userID, network), generating and storing one
// on first use. A concurrent creator winning the insert is treated as success.
func (s *WalletServiceImpl) GetOrCreateWallet(ctx context.Context, userID int64, network string) (*domain.Wallet, error) {
	existing, err := s.walletRepo.GetByUserAndNetwork(ctx, userID, network)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("wallet store", fmt.Errorf("get wallet: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	client, ok := s.clients[network]
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(network)
	}

	creds, err := client.GenerateWallet(ctx)
	if err != nil {
		return nil, apperror.ErrProvisioningFailed(fmt.Errorf("generate wallet: %w", err))
	}

	encrypted, err := s.security.EncryptBytes(creds.PrivateKey)
	if err != nil {
		return nil, apperror.ErrProvisioningFailed(fmt.Errorf("encrypt private key: %w", err))
	}

	wallet := &domain.Wallet{
		ID:                  uuid.New(),
		UserID:              userID,
		Network:             network,
		Address:             creds.Address,
		PrivateKeyEncrypted: encrypted,
		CreatedAt:           time.Now().UTC(),
	}

	saved, err := s.walletRepo.Save(ctx, wallet)
	if errors.Is(err, ports.ErrDuplicate) {
		// Lost the race: the stored wallet wins and ours is discarded.
		winner, getErr := s.walletRepo.GetByUserAndNetwork(ctx, userID, network)
		if getErr != nil {
			return nil, apperror.ErrProvisioningFailed(fmt.Errorf("re-fetch wallet: %w", getErr))
		}
		if winner == nil {
			return nil, apperror.ErrProvisioningFailed(fmt.Errorf("wallet vanished after duplicate insert"))
		}
		return winner, nil
	}
	if err != nil {
		return nil, apperror.ErrProvisioningFailed(fmt.Errorf("save wallet: %w", err))
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("network", network).
		Str("address", saved.Address).
		Msg("wallet provisioned")

	return saved, nil
}
