package withdrawalservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

// MinWithdrawalAmount is the smallest payout the bank transfer desk accepts.
const MinWithdrawalAmount = int64(10000)

type WithdrawalRepo interface {
	Create(ctx context.Context, withdrawal *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error)
	GetByID(ctx context.Context, id int) (*domain.WithdrawalRequest, error)
	GetByIDForUpdate(ctx context.Context, id int) (*domain.WithdrawalRequest, error)
	FindByUserID(ctx context.Context, userID int, status string, page, limit int) ([]domain.WithdrawalRequest, int, error)
	Update(ctx context.Context, withdrawal *domain.WithdrawalRequest) error
}

type WalletRepo interface {
	GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Wallet, error)
	Update(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Complete(ctx context.Context, id int, balanceBefore, balanceAfter int64) error
	UpdateStatus(ctx context.Context, id int, status string) error
}

type Service struct {
	withdrawalRepo  WithdrawalRepo
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(withdrawalRepo WithdrawalRepo, walletRepo WalletRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		withdrawalRepo:  withdrawalRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

// Request reserves the amount immediately: the balance is debited when the
// request is created, not when the transfer settles, so the user can't spend
// money that is already on its way out.
func (s *Service) Request(ctx context.Context, userID int, amount int64, bankName, accountNumber, accountName, notes string) (*domain.WithdrawalRequest, error) {
	if amount < MinWithdrawalAmount {
		return nil, fmt.Errorf("withdrawal amount must be at least %d: %w", MinWithdrawalAmount, domain.ErrValidation)
	}
	if bankName == "" || accountNumber == "" || accountName == "" {
		return nil, fmt.Errorf("bank details are required: %w", domain.ErrValidation)
	}

	var created *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return fmt.Errorf("wallet for user %d: %w", userID, domain.ErrNotFound)
		}
		if !wallet.IsVerified {
			return fmt.Errorf("withdrawals require verification: %w", domain.ErrNotVerified)
		}
		if wallet.Balance < amount {
			return fmt.Errorf("balance %d is below withdrawal amount %d: %w", wallet.Balance, amount, domain.ErrInsufficientFunds)
		}

		before := wallet.Balance
		wallet.Balance -= amount
		if _, err := s.walletRepo.Update(ctx, wallet); err != nil {
			return err
		}

		// The ledger entry stays pending until the transfer settles.
		trx, err := s.transactionRepo.Create(ctx, &domain.Transaction{
			UserID:        userID,
			Type:          domain.TxTypeWithdrawal,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  before - amount,
			Status:        domain.TxStatusPending,
			Description:   fmt.Sprintf("withdrawal to %s %s", bankName, accountNumber),
		})
		if err != nil {
			return err
		}

		created, err = s.withdrawalRepo.Create(ctx, &domain.WithdrawalRequest{
			UserID:            userID,
			Amount:            amount,
			BankName:          bankName,
			BankAccountNumber: accountNumber,
			AccountName:       accountName,
			Notes:             notes,
			Status:            domain.WithdrawalStatusPending,
			BalanceBefore:     before,
			TransactionID:     trx.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal requested", zap.Int("userID", userID), zap.Int64("amount", amount))
	return created, nil
}

// Approve acknowledges a pending request. The money was already reserved at
// request time, so this only advances the workflow state.
func (s *Service) Approve(ctx context.Context, id int) (*domain.WithdrawalRequest, error) {
	var approved *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
		}
		if withdrawal.Status != domain.WithdrawalStatusPending {
			return fmt.Errorf("withdrawal %d is %s: %w", id, withdrawal.Status, domain.ErrInvalidStateTransition)
		}

		now := time.Now()
		withdrawal.Status = domain.WithdrawalStatusApproved
		withdrawal.ProcessedAt = &now
		if err := s.withdrawalRepo.Update(ctx, withdrawal); err != nil {
			return err
		}
		approved = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Complete marks an approved transfer as settled and finalizes its ledger
// entry with the snapshots captured at request time.
func (s *Service) Complete(ctx context.Context, id int) (*domain.WithdrawalRequest, error) {
	var completed *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
		}
		if withdrawal.Status != domain.WithdrawalStatusApproved {
			return fmt.Errorf("withdrawal %d is %s: %w", id, withdrawal.Status, domain.ErrInvalidStateTransition)
		}

		if err := s.transactionRepo.Complete(ctx, withdrawal.TransactionID,
			withdrawal.BalanceBefore, withdrawal.BalanceBefore-withdrawal.Amount); err != nil {
			return err
		}

		now := time.Now()
		withdrawal.Status = domain.WithdrawalStatusCompleted
		withdrawal.CompletedAt = &now
		if err := s.withdrawalRepo.Update(ctx, withdrawal); err != nil {
			return err
		}
		completed = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal completed", zap.Int("withdrawalID", id))
	return completed, nil
}

// Reject refunds a pending or approved request. The reserved amount goes
// back to the wallet through a compensating refund entry; the original
// withdrawal entry is marked failed, never deleted.
func (s *Service) Reject(ctx context.Context, id int, reason string) (*domain.WithdrawalRequest, error) {
	var rejected *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
		}
		if withdrawal.Status != domain.WithdrawalStatusPending && withdrawal.Status != domain.WithdrawalStatusApproved {
			return fmt.Errorf("withdrawal %d is %s: %w", id, withdrawal.Status, domain.ErrInvalidStateTransition)
		}

		if err := s.refund(ctx, withdrawal, fmt.Sprintf("withdrawal #%d rejected", withdrawal.ID)); err != nil {
			return err
		}

		now := time.Now()
		withdrawal.Status = domain.WithdrawalStatusRejected
		withdrawal.RejectionReason = reason
		withdrawal.ProcessedAt = &now
		if err := s.withdrawalRepo.Update(ctx, withdrawal); err != nil {
			return err
		}
		rejected = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal rejected", zap.Int("withdrawalID", id), zap.String("reason", reason))
	return rejected, nil
}

// Cancel lets the owner call back a request that has not been approved yet.
func (s *Service) Cancel(ctx context.Context, userID, id int) (*domain.WithdrawalRequest, error) {
	var cancelled *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if withdrawal == nil || withdrawal.UserID != userID {
			return fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
		}
		if withdrawal.Status != domain.WithdrawalStatusPending {
			return fmt.Errorf("withdrawal %d is %s: %w", id, withdrawal.Status, domain.ErrInvalidStateTransition)
		}

		if err := s.refund(ctx, withdrawal, fmt.Sprintf("withdrawal #%d cancelled", withdrawal.ID)); err != nil {
			return err
		}

		withdrawal.Status = domain.WithdrawalStatusCancelled
		if err := s.withdrawalRepo.Update(ctx, withdrawal); err != nil {
			return err
		}
		cancelled = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal cancelled", zap.Int("withdrawalID", id), zap.Int("userID", userID))
	return cancelled, nil
}

// refund returns the reserved amount to the wallet: the original entry is
// failed and a completed refund entry records the credit with snapshots of
// the balance at refund time.
func (s *Service) refund(ctx context.Context, withdrawal *domain.WithdrawalRequest, description string) error {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, withdrawal.UserID)
	if err != nil {
		return err
	}
	if wallet == nil {
		return fmt.Errorf("wallet for user %d: %w", withdrawal.UserID, domain.ErrNotFound)
	}

	before := wallet.Balance
	wallet.Balance += withdrawal.Amount
	updated, err := s.walletRepo.Update(ctx, wallet)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.UpdateStatus(ctx, withdrawal.TransactionID, domain.TxStatusFailed); err != nil {
		return err
	}
	_, err = s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:        withdrawal.UserID,
		Type:          domain.TxTypeWithdrawalRefund,
		Amount:        withdrawal.Amount,
		BalanceBefore: before,
		BalanceAfter:  updated.Balance,
		Status:        domain.TxStatusCompleted,
		Description:   description,
	})
	return err
}

func (s *Service) GetWithdrawals(ctx context.Context, userID int, status string, page, limit int) ([]domain.WithdrawalRequest, int, error) {
	withdrawals, total, err := s.withdrawalRepo.FindByUserID(ctx, userID, status, page, limit)
	if err != nil {
		zap.L().Error("failed to get withdrawals", zap.Error(err))
		return nil, 0, err
	}
	return withdrawals, total, nil
}

func (s *Service) GetWithdrawal(ctx context.Context, userID, id int) (*domain.WithdrawalRequest, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil || withdrawal.UserID != userID {
		return nil, fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
	}
	return withdrawal, nil
}
