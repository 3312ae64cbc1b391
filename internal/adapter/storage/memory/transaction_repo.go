package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/google/uuid"
)

type txKey struct {
	hash    string
	network string
}

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]domain.Transaction
	byHash map[txKey]uuid.UUID
}

// NewTransactionRepo creates an empty TransactionRepo.
func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{
		byID:   make(map[uuid.UUID]domain.Transaction),
		byHash: make(map[txKey]uuid.UUID),
	}
}

func (r *TransactionRepo) Save(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := txKey{tx.Hash, tx.Network}
	if _, exists := r.byHash[key]; exists {
		return nil, fmt.Errorf("insert transaction %s on %s: %w", tx.Hash, tx.Network, ports.ErrDuplicate)
	}

	stored := *tx
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.byID[stored.ID] = stored
	r.byHash[key] = stored.ID

	out := stored
	return &out, nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (r *TransactionRepo) GetByHashAndNetwork(_ context.Context, hash, network string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[txKey{hash, network}]
	if !ok {
		return nil, nil
	}
	tx := r.byID[id]
	return &tx, nil
}

func (r *TransactionRepo) GetByInvoice(_ context.Context, invoiceID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for _, tx := range r.byID {
		if tx.InvoiceID == invoiceID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *TransactionRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byHash, txKey{tx.Hash, tx.Network})
	return true, nil
}

// Count returns the number of stored transactions.
func (r *TransactionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
