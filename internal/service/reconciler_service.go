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

// ReconcilerServiceImpl implements ports.PaymentReconciler.
// It holds no state between calls and is safe to run concurrently for the same invoice.
type ReconcilerServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	readers     ports.BlockchainReaders
	log         zerolog.Logger
	now         func() time.Time
}

// NewReconcilerService creates a new ReconcilerServiceImpl.
func NewReconcilerService(
	invoiceRepo ports.InvoiceRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	readers ports.BlockchainReaders,
	log zerolog.Logger,
) *ReconcilerServiceImpl {
	return &ReconcilerServiceImpl{
		invoiceRepo: invoiceRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		readers:     readers,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CheckInvoiceStatus advances a PENDING invoice to PAID or EXPIRED when the chain or
// the clock says so, and returns its current state. Terminal invoices are returned as-is.
func (s *ReconcilerServiceImpl) CheckInvoiceStatus(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("invoice store", fmt.Errorf("get invoice: %w", err))
	}
	if invoice == nil {
		return nil, apperror.ErrNotFound("invoice")
	}

	if invoice.Status != domain.InvoiceStatusPending {
		return invoice, nil
	}

	if invoice.IsExpired(s.now()) {
		return s.transition(ctx, invoice, domain.InvoiceStatusExpired)
	}

	wallet, err := s.walletRepo.GetByUserAndNetwork(ctx, invoice.UserID, invoice.Network)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("wallet store", fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	reader, ok := s.readers[invoice.Network]
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(invoice.Network)
	}

	match, err := reader.FindMatchingTransaction(ctx, wallet, invoice)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("blockchain reader", fmt.Errorf("find transaction: %w", err))
	}
	if match == nil {
		return s.expireIfDue(ctx, invoice)
	}

	network := match.Network
	if network == "" {
		network = invoice.Network
	}

	recorded, err := s.txRepo.GetByHashAndNetwork(ctx, match.Hash, network)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("transaction store", fmt.Errorf("get transaction: %w", err))
	}
	if recorded != nil {
		return s.settleRecorded(ctx, invoice, recorded)
	}

	_, err = s.txRepo.Save(ctx, &domain.Transaction{
		ID:        uuid.New(),
		InvoiceID: invoice.ID,
		Hash:      match.Hash,
		Network:   network,
		CreatedAt: s.now(),
	})
	if errors.Is(err, ports.ErrDuplicate) {
		// A concurrent check recorded the same event first.
		recorded, err = s.txRepo.GetByHashAndNetwork(ctx, match.Hash, network)
		if err != nil {
			return nil, apperror.ErrCollaboratorUnavailable("transaction store", fmt.Errorf("re-fetch transaction: %w", err))
		}
		if recorded == nil {
			return nil, apperror.ErrCollaboratorUnavailable("transaction store", fmt.Errorf("transaction %s vanished after duplicate insert", match.Hash))
		}
		return s.settleRecorded(ctx, invoice, recorded)
	}
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("transaction store", fmt.Errorf("save transaction: %w", err))
	}

	// Payment observed wins over an expiry that passed during the query.
	return s.transition(ctx, invoice, domain.InvoiceStatusPaid)
}

// settleRecorded handles a match whose (hash, network) is already stored. A record bound
// to this invoice means an earlier check saved it but never committed PAID.
func (s *ReconcilerServiceImpl) settleRecorded(ctx context.Context, invoice *domain.Invoice, recorded *domain.Transaction) (*domain.Invoice, error) {
	if recorded.InvoiceID == invoice.ID {
		return s.transition(ctx, invoice, domain.InvoiceStatusPaid)
	}

	s.log.Warn().
		Str("invoice_id", invoice.ID.String()).
		Str("tx_hash", recorded.Hash).
		Str("bound_invoice_id", recorded.InvoiceID.String()).
		Msg("matched transaction already settles another invoice")

	return s.expireIfDue(ctx, invoice)
}

func (s *ReconcilerServiceImpl) expireIfDue(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if invoice.IsExpired(s.now()) {
		return s.transition(ctx, invoice, domain.InvoiceStatusExpired)
	}
	return invoice, nil
}

// transition persists a PENDING -> status move. When another check already moved the
// invoice to a terminal state, the stored state is returned instead.
func (s *ReconcilerServiceImpl) transition(ctx context.Context, invoice *domain.Invoice, status domain.InvoiceStatus) (*domain.Invoice, error) {
	updated, err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, status)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("invoice store", fmt.Errorf("update invoice status: %w", err))
	}
	if updated == nil {
		return nil, apperror.ErrNotFound("invoice")
	}

	if updated.Status == status {
		s.log.Info().
			Str("invoice_id", updated.ID.String()).
			Str("status", string(status)).
			Msg("invoice status changed")
	}

	return updated, nil
}
