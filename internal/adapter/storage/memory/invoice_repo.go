package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
)

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]domain.Invoice
}

// NewInvoiceRepo creates an empty InvoiceRepo.
func NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{invoices: make(map[uuid.UUID]domain.Invoice)}
}

func (r *InvoiceRepo) Save(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *invoice
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.invoices[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetByUser(_ context.Context, userID int64) ([]domain.Invoice, error) {
	return r.filter(func(inv domain.Invoice) bool { return inv.UserID == userID }, 0, true), nil
}

func (r *InvoiceRepo) GetByStatus(_ context.Context, status domain.InvoiceStatus, limit int) ([]domain.Invoice, error) {
	return r.filter(func(inv domain.Invoice) bool { return inv.Status == status }, limit, false), nil
}

func (r *InvoiceRepo) GetByStatusAfter(_ context.Context, status domain.InvoiceStatus, after *domain.InvoiceCursor, limit int) ([]domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.Status != status {
			continue
		}
		if after != nil && !cursorLess(*after, domain.CursorOf(inv)) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		return cursorLess(domain.CursorOf(out[i]), domain.CursorOf(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// cursorLess orders like PostgreSQL's (created_at, id) row comparison; uuids compare bytewise.
func cursorLess(a, b domain.InvoiceCursor) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// filter returns matching invoices ordered by creation time, newest first when desc.
func (r *InvoiceRepo) filter(match func(domain.Invoice) bool, limit int, desc bool) []domain.Invoice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Invoice, 0)
	for _, inv := range r.invoices {
		if match(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UpdateStatus only moves PENDING invoices; terminal ones are returned unchanged.
func (r *InvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	if inv.Status == domain.InvoiceStatusPending {
		inv.Status = status
		inv.UpdatedAt = time.Now().UTC()
		r.invoices[id] = inv
	}
	return &inv, nil
}

func (r *InvoiceRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[id]; !ok {
		return false, nil
	}
	delete(r.invoices, id)
	return true, nil
}
