// Package memory holds in-process repositories with the same uniqueness guarantees
// as the PostgreSQL ones. They back tests and single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/google/uuid"
)

type walletKey struct {
	userID  int64
	network string
}

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	mu      sync.RWMutex
	wallets map[walletKey]domain.Wallet
}

// NewWalletRepo creates an empty WalletRepo.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{wallets: make(map[walletKey]domain.Wallet)}
}

func (r *WalletRepo) GetByUserAndNetwork(_ context.Context, userID int64, network string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[walletKey{userID, network}]
	if !ok {
		return nil, nil
	}
	return cloneWallet(w), nil
}

func (r *WalletRepo) Save(_ context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := walletKey{wallet.UserID, wallet.Network}
	if _, exists := r.wallets[key]; exists {
		return nil, fmt.Errorf("insert wallet (user %d, %s): %w", wallet.UserID, wallet.Network, ports.ErrDuplicate)
	}

	stored := *wallet
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.PrivateKeyEncrypted = append([]byte(nil), wallet.PrivateKeyEncrypted...)
	r.wallets[key] = stored

	return cloneWallet(stored), nil
}

// cloneWallet copies w including its key blob, so callers never alias stored bytes.
func cloneWallet(w domain.Wallet) *domain.Wallet {
	w.PrivateKeyEncrypted = append([]byte(nil), w.PrivateKeyEncrypted...)
	return &w
}

// Count returns the number of stored wallets.
func (r *WalletRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}
