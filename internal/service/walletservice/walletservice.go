package walletservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"github.com/bilguunt/moneyapp/pkg/qpay"
	"go.uber.org/zap"
)

// Wallet policy.
const (
	VerificationFee    = int64(3000)
	InitialCreditLimit = int64(500000)
	MinDepositAmount   = int64(1000)
)

type WalletRepo interface {
	CreateWallet(ctx context.Context, userID int) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Wallet, error)
	Update(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetByID(ctx context.Context, id int) (*domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	FindByUserID(ctx context.Context, userID int, page, limit int) ([]domain.Transaction, int, error)
	Complete(ctx context.Context, id int, balanceBefore, balanceAfter int64) error
	GetLastCompleted(ctx context.Context, userID int) (*domain.Transaction, error)
	SumPendingWithdrawals(ctx context.Context, userID int) (int64, error)
}

type PaymentClient interface {
	CreateInvoice(ctx context.Context, amount int64, reference, description string) (*qpay.Invoice, error)
}

type Service struct {
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	payments        PaymentClient
	txManager       pg.TXManager
}

func New(walletRepo WalletRepo, transactionRepo TransactionRepo, payments PaymentClient, txManager pg.TXManager) *Service {
	return &Service{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		payments:        payments,
		txManager:       txManager,
	}
}

func (s *Service) CreateWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.CreateWallet(ctx, userID)
	if err != nil {
		zap.L().Error("failed to create wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (s *Service) GetWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, domain.ErrNotFound)
	}
	return wallet, nil
}

// Verify charges the verification fee and unlocks credit access. When the
// balance covers the fee it is debited on the spot; otherwise a QPay invoice
// is issued and a pending verification_fee transaction is returned together
// with ErrExternalPaymentPending.
func (s *Service) Verify(ctx context.Context, userID int) (*domain.Wallet, *domain.Transaction, *qpay.Invoice, error) {
	var (
		wallet  *domain.Wallet
		trx     *domain.Transaction
		invoice *qpay.Invoice
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("wallet for user %d: %w", userID, domain.ErrNotFound)
		}
		if w.IsVerified {
			return fmt.Errorf("wallet already verified: %w", domain.ErrInvalidStateTransition)
		}

		if w.Balance < VerificationFee {
			invoice, err = s.payments.CreateInvoice(ctx, VerificationFee, uuid.NewString(), "wallet verification fee")
			if err != nil {
				zap.L().Error("can't create verification invoice", zap.Error(err))
				return err
			}
			trx, err = s.transactionRepo.Create(ctx, &domain.Transaction{
				UserID:        userID,
				Type:          domain.TxTypeVerificationFee,
				Amount:        VerificationFee,
				BalanceBefore: w.Balance,
				BalanceAfter:  w.Balance,
				Status:        domain.TxStatusPending,
				Reference:     invoice.Reference,
				Description:   "wallet verification fee",
			})
			if err != nil {
				return err
			}
			wallet = w
			return nil
		}

		before := w.Balance
		w.Balance -= VerificationFee
		w.IsVerified = true
		w.CreditLimit = InitialCreditLimit

		updated, err := s.walletRepo.Update(ctx, w)
		if err != nil {
			return err
		}
		trx, err = s.transactionRepo.Create(ctx, &domain.Transaction{
			UserID:        userID,
			Type:          domain.TxTypeVerificationFee,
			Amount:        VerificationFee,
			BalanceBefore: before,
			BalanceAfter:  updated.Balance,
			Status:        domain.TxStatusCompleted,
			Description:   "wallet verification fee",
		})
		if err != nil {
			return err
		}
		wallet = updated
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if !wallet.IsVerified {
		return wallet, trx, invoice, domain.ErrExternalPaymentPending
	}
	zap.L().Info("wallet verified", zap.Int("userID", userID))
	return wallet, trx, nil, nil
}

// RequestDeposit issues a QPay invoice and records a pending deposit
// transaction. The balance is only credited once the gateway confirms the
// payment through ConfirmPayment.
func (s *Service) RequestDeposit(ctx context.Context, userID int, amount int64) (*domain.Transaction, *qpay.Invoice, error) {
	if amount < MinDepositAmount {
		return nil, nil, fmt.Errorf("deposit amount below minimum %d: %w", MinDepositAmount, domain.ErrValidation)
	}
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	invoice, err := s.payments.CreateInvoice(ctx, amount, uuid.NewString(), "wallet deposit")
	if err != nil {
		zap.L().Error("can't create deposit invoice", zap.Error(err))
		return nil, nil, err
	}

	trx, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:        userID,
		Type:          domain.TxTypeDeposit,
		Amount:        amount,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance,
		Status:        domain.TxStatusPending,
		Reference:     invoice.Reference,
		Description:   "wallet deposit",
	})
	if err != nil {
		return nil, nil, err
	}
	return trx, invoice, nil
}

// ConfirmPayment resolves a pending externally-paid transaction by its
// gateway reference. Re-confirming a completed reference is a no-op, so the
// gateway may safely retry the callback.
func (s *Service) ConfirmPayment(ctx context.Context, reference string) (*domain.Transaction, error) {
	var confirmed *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		trx, err := s.transactionRepo.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		if trx == nil {
			return fmt.Errorf("transaction with reference %s: %w", reference, domain.ErrNotFound)
		}
		if trx.Status == domain.TxStatusCompleted {
			confirmed = trx
			return nil
		}
		if trx.Status != domain.TxStatusPending {
			return fmt.Errorf("transaction %d is %s: %w", trx.ID, trx.Status, domain.ErrInvalidStateTransition)
		}

		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, trx.UserID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return fmt.Errorf("wallet for user %d: %w", trx.UserID, domain.ErrNotFound)
		}

		before := wallet.Balance
		settledBefore, settledAfter := before, before
		switch trx.Type {
		case domain.TxTypeDeposit:
			wallet.Balance += trx.Amount
			settledAfter = before + trx.Amount
		case domain.TxTypeVerificationFee:
			// The gateway payment is posted as a credit first, then the fee
			// is debited from it. The wallet balance nets to zero but every
			// completed entry keeps balance_after = balance_before +- amount.
			if _, err := s.transactionRepo.Create(ctx, &domain.Transaction{
				UserID:        trx.UserID,
				Type:          domain.TxTypeGatewayPayment,
				Amount:        trx.Amount,
				BalanceBefore: before,
				BalanceAfter:  before + trx.Amount,
				Status:        domain.TxStatusCompleted,
				Description:   "verification fee paid via QPay",
			}); err != nil {
				return err
			}
			settledBefore = before + trx.Amount
			settledAfter = before
			wallet.IsVerified = true
			wallet.CreditLimit = InitialCreditLimit
		default:
			return fmt.Errorf("transaction type %s is not externally payable: %w", trx.Type, domain.ErrInvalidStateTransition)
		}

		if _, err := s.walletRepo.Update(ctx, wallet); err != nil {
			return err
		}
		if err := s.transactionRepo.Complete(ctx, trx.ID, settledBefore, settledAfter); err != nil {
			return err
		}

		trx.Status = domain.TxStatusCompleted
		trx.BalanceBefore = settledBefore
		trx.BalanceAfter = settledAfter
		confirmed = trx
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("payment confirmed", zap.String("reference", reference))
	return confirmed, nil
}

func (s *Service) GetTransactions(ctx context.Context, userID, page, limit int) ([]domain.Transaction, int, error) {
	transactions, total, err := s.transactionRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, 0, err
	}
	return transactions, total, nil
}

func (s *Service) GetTransaction(ctx context.Context, userID, id int) (*domain.Transaction, error) {
	trx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trx == nil || trx.UserID != userID {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	return trx, nil
}

// AuditWallet assembles the conservation read for operators: with no
// in-flight confirmations, wallet balance plus the pending withdrawal hold
// equals the last completed entry's balance_after.
func (s *Service) AuditWallet(ctx context.Context, userID int) (*domain.WalletAudit, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	last, err := s.transactionRepo.GetLastCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.transactionRepo.SumPendingWithdrawals(ctx, userID)
	if err != nil {
		return nil, err
	}

	if last != nil && last.BalanceAfter != wallet.Balance+reserved {
		zap.L().Warn("wallet does not reconcile with ledger",
			zap.Int("userID", userID),
			zap.Int64("balance", wallet.Balance),
			zap.Int64("reserved", reserved),
			zap.Int64("lastCompletedAfter", last.BalanceAfter),
		)
	}
	return &domain.WalletAudit{
		Wallet:        wallet,
		LastCompleted: last,
		Reserved:      reserved,
	}, nil
}
