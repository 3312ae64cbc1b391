package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
// The (user_id, network) unique constraint is what makes provisioning race-safe.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Save inserts a new wallet. A second wallet for the same (user, network) fails
// with ports.ErrDuplicate.
func (r *WalletRepo) Save(ctx context.Context, w *domain.Wallet) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (id, user_id, network, address, private_key_encrypted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	saved := *w
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		saved.ID, saved.UserID, saved.Network, saved.Address,
		saved.PrivateKeyEncrypted, saved.CreatedAt,
	)
	if err != nil {
		return nil, wrapWriteErr("insert wallet", err)
	}
	return &saved, nil
}

// GetByUserAndNetwork fetches the wallet of a user on one network.
func (r *WalletRepo) GetByUserAndNetwork(ctx context.Context, userID int64, network string) (*domain.Wallet, error) {
	query := `SELECT id, user_id, network, address, private_key_encrypted, created_at
		FROM wallets WHERE user_id = $1 AND network = $2`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID, network).Scan(
		&w.ID, &w.UserID, &w.Network, &w.Address,
		&w.PrivateKeyEncrypted, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user and network: %w", err)
	}
	return w, nil
}
