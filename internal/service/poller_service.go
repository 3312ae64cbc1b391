package service

import (
	"context"
	"sync"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PollerConfig controls the reconciliation sweep.
type PollerConfig struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	LeaseTTL  time.Duration
}

// Poller periodically reconciles PENDING invoices. Several replicas may run at once;
// a per-invoice lease keeps them from checking the same invoice simultaneously.
type Poller struct {
	invoiceRepo ports.InvoiceRepository
	reconciler  ports.PaymentReconciler
	leases      ports.LeaseStore
	cfg         PollerConfig
	log         zerolog.Logger

	mu     sync.Mutex
	cursor *domain.InvoiceCursor // last invoice of the previous batch, nil at the start of a pass
}

// NewPoller creates a new Poller. Zero config values fall back to sane defaults.
func NewPoller(
	invoiceRepo ports.InvoiceRepository,
	reconciler ports.PaymentReconciler,
	leases ports.LeaseStore,
	cfg PollerConfig,
	log zerolog.Logger,
) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 2 * time.Minute
	}
	return &Poller{
		invoiceRepo: invoiceRepo,
		reconciler:  reconciler,
		leases:      leases,
		cfg:         cfg,
		log:         log,
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info().
		Dur("interval", p.cfg.Interval).
		Int("workers", p.cfg.Workers).
		Msg("starting invoice poller")

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("invoice poller stopped")
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep checks the next batch of PENDING invoices and returns how many were checked.
// Consecutive sweeps page through all pending invoices oldest first and wrap around at
// the end, so every invoice is visited once per pass however many stay pending.
// Individual failures are logged and never abort the sweep.
func (p *Poller) Sweep(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	invoices, err := p.nextBatch(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to list pending invoices")
		return 0
	}

	results := make([]bool, len(invoices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i := range invoices {
		invoice := invoices[i]
		g.Go(func() error {
			results[i] = p.checkOne(gctx, invoice)
			return nil
		})
	}
	_ = g.Wait()

	checked := 0
	for _, ok := range results {
		if ok {
			checked++
		}
	}
	return checked
}

// nextBatch fetches the page after the cursor and advances it. A short page ends the pass.
func (p *Poller) nextBatch(ctx context.Context) ([]domain.Invoice, error) {
	invoices, err := p.invoiceRepo.GetByStatusAfter(ctx, domain.InvoiceStatusPending, p.cursor, p.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 && p.cursor != nil {
		p.cursor = nil
		invoices, err = p.invoiceRepo.GetByStatusAfter(ctx, domain.InvoiceStatusPending, nil, p.cfg.BatchSize)
		if err != nil {
			return nil, err
		}
	}

	if len(invoices) < p.cfg.BatchSize {
		p.cursor = nil
	} else {
		last := domain.CursorOf(invoices[len(invoices)-1])
		p.cursor = &last
	}
	return invoices, nil
}

func leaseKey(invoice domain.Invoice) string {
	return "reconcile:" + invoice.ID.String()
}

func (p *Poller) checkOne(ctx context.Context, invoice domain.Invoice) bool {
	key := leaseKey(invoice)
	acquired, err := p.leases.Acquire(ctx, key, p.cfg.LeaseTTL)
	if err != nil {
		p.log.Warn().Err(err).Str("invoice_id", invoice.ID.String()).Msg("lease acquire failed, skipping")
		return false
	}
	if !acquired {
		return false
	}
	defer func() {
		// Released on a fresh context so a cancelled sweep still frees the lease.
		if err := p.leases.Release(context.WithoutCancel(ctx), key); err != nil {
			p.log.Warn().Err(err).Str("invoice_id", invoice.ID.String()).Msg("lease release failed")
		}
	}()

	updated, err := p.reconciler.CheckInvoiceStatus(ctx, invoice.ID)
	if err != nil {
		p.log.Error().Err(err).Str("invoice_id", invoice.ID.String()).Msg("invoice check failed")
		return true
	}
	if updated.Status != invoice.Status {
		p.log.Debug().
			Str("invoice_id", invoice.ID.String()).
			Str("status", string(updated.Status)).
			Msg("invoice reconciled")
	}
	return true
}
