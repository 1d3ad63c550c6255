package loanservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

type LoanRepo interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, id int) (*domain.Loan, error)
	FindByUserID(ctx context.Context, userID int, status string, page, limit int) ([]domain.Loan, int, error)
	FindActiveByUserID(ctx context.Context, userID int) ([]domain.Loan, error)
	FindDueForCheck(ctx context.Context, limit uint32) ([]domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
}

type WalletRepo interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Wallet, error)
	Update(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

type Service struct {
	loanRepo        LoanRepo
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(loanRepo LoanRepo, walletRepo WalletRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		loanRepo:        loanRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

// Request creates a pending loan. No balance effect until approval. When the
// client submits its previewed total it must match the server's figure.
func (s *Service) Request(ctx context.Context, userID int, principal int64, termDays int, purpose string, clientTotal int64) (*domain.Loan, error) {
	if principal < MinLoanAmount || principal > MaxLoanAmount {
		return nil, fmt.Errorf("loan amount must be between %d and %d: %w", MinLoanAmount, MaxLoanAmount, domain.ErrValidation)
	}
	if !validTerm(termDays) {
		return nil, fmt.Errorf("unsupported loan term %d days: %w", termDays, domain.ErrValidation)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, domain.ErrNotFound)
	}
	if !wallet.IsVerified {
		return nil, fmt.Errorf("credit requires verification: %w", domain.ErrNotVerified)
	}
	if principal > wallet.AvailableCredit() {
		return nil, fmt.Errorf("available credit %d is below requested %d: %w", wallet.AvailableCredit(), principal, domain.ErrInsufficientFunds)
	}

	now := time.Now()
	calc := Calculate(principal, termDays, InterestRate, now)
	if clientTotal != 0 && clientTotal != calc.TotalAmount {
		return nil, fmt.Errorf("client total %d disagrees with server total %d: %w", clientTotal, calc.TotalAmount, domain.ErrValidation)
	}

	loan := &domain.Loan{
		UserID:          userID,
		PrincipalAmount: calc.PrincipalAmount,
		InterestRate:    calc.InterestRate,
		TermDays:        calc.TermDays,
		TotalInterest:   calc.TotalInterest,
		TotalAmount:     calc.TotalAmount,
		RemainingAmount: calc.TotalAmount,
		Status:          domain.LoanStatusPending,
		Purpose:         purpose,
		CreatedAt:       now,
		DueDate:         calc.DueDate,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		zap.L().Error("can't save loan", zap.Error(err))
		return nil, err
	}

	zap.L().Info("loan requested", zap.Int("userID", userID), zap.Int64("principal", principal))
	return loan, nil
}

// Approve disburses a pending loan: credits the wallet with the principal,
// bumps totalBorrowed and posts the disbursement, all in one transaction.
func (s *Service) Approve(ctx context.Context, loanID int) (*domain.Loan, error) {
	var approved *domain.Loan
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
		}
		if loan.Status != domain.LoanStatusPending {
			return fmt.Errorf("loan %d is %s: %w", loanID, loan.Status, domain.ErrInvalidStateTransition)
		}

		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, loan.UserID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return fmt.Errorf("wallet for user %d: %w", loan.UserID, domain.ErrNotFound)
		}
		// Credit may have shrunk since the request was made.
		if loan.PrincipalAmount > wallet.AvailableCredit() {
			return fmt.Errorf("available credit %d is below principal %d: %w", wallet.AvailableCredit(), loan.PrincipalAmount, domain.ErrInsufficientFunds)
		}

		before := wallet.Balance
		wallet.Balance += loan.PrincipalAmount
		wallet.TotalBorrowed += loan.PrincipalAmount
		updated, err := s.walletRepo.Update(ctx, wallet)
		if err != nil {
			return err
		}

		if _, err := s.transactionRepo.Create(ctx, &domain.Transaction{
			UserID:        loan.UserID,
			Type:          domain.TxTypeLoanDisbursement,
			Amount:        loan.PrincipalAmount,
			BalanceBefore: before,
			BalanceAfter:  updated.Balance,
			Status:        domain.TxStatusCompleted,
			Description:   fmt.Sprintf("loan #%d disbursement", loan.ID),
			RelatedLoanID: &loan.ID,
		}); err != nil {
			return err
		}

		loan.Status = domain.LoanStatusActive
		loan.RemainingAmount = loan.TotalAmount
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}
		approved = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("loan disbursed", zap.Int("loanID", loanID))
	return approved, nil
}

// Reject cancels a pending loan before disbursement. No balance effect.
func (s *Service) Reject(ctx context.Context, loanID int, reason string) (*domain.Loan, error) {
	var rejected *domain.Loan
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
		}
		if loan.Status != domain.LoanStatusPending {
			return fmt.Errorf("loan %d is %s: %w", loanID, loan.Status, domain.ErrInvalidStateTransition)
		}

		loan.Status = domain.LoanStatusCancelled
		loan.RejectionReason = reason
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}
		rejected = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Cancel lets the owner withdraw a loan request that has not been disbursed.
func (s *Service) Cancel(ctx context.Context, userID, loanID int) (*domain.Loan, error) {
	var cancelled *domain.Loan
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil || loan.UserID != userID {
			return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
		}
		if loan.Status != domain.LoanStatusPending {
			return fmt.Errorf("loan %d is %s: %w", loanID, loan.Status, domain.ErrInvalidStateTransition)
		}

		loan.Status = domain.LoanStatusCancelled
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}
		cancelled = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Repay settles the outstanding amount plus any accrued penalty. Penalty is
// computed lazily here in case the periodic job has not run today yet.
func (s *Service) Repay(ctx context.Context, userID, loanID int) (*domain.Loan, *domain.Wallet, error) {
	var (
		repaid *domain.Loan
		wallet *domain.Wallet
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil || loan.UserID != userID {
			return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
		}
		if loan.Status != domain.LoanStatusActive && loan.Status != domain.LoanStatusOverdue {
			return fmt.Errorf("loan %d is %s: %w", loanID, loan.Status, domain.ErrInvalidStateTransition)
		}

		now := time.Now()
		overdueDays := OverdueDays(loan.DueDate, now)
		penalty := Penalty(loan.RemainingAmount, overdueDays)
		total := loan.RemainingAmount + penalty

		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("wallet for user %d: %w", userID, domain.ErrNotFound)
		}
		if w.Balance < total {
			return fmt.Errorf("balance %d is below repayment total %d: %w", w.Balance, total, domain.ErrInsufficientFunds)
		}

		before := w.Balance
		w.Balance -= total
		// Credit is restored by the principal, not by interest or penalty,
		// so availableCredit never exceeds creditLimit.
		w.TotalRepaid += loan.PrincipalAmount
		updated, err := s.walletRepo.Update(ctx, w)
		if err != nil {
			return err
		}

		if _, err := s.transactionRepo.Create(ctx, &domain.Transaction{
			UserID:        userID,
			Type:          domain.TxTypeLoanRepayment,
			Amount:        loan.RemainingAmount,
			BalanceBefore: before,
			BalanceAfter:  before - loan.RemainingAmount,
			Status:        domain.TxStatusCompleted,
			Description:   fmt.Sprintf("loan #%d repayment", loan.ID),
			RelatedLoanID: &loan.ID,
		}); err != nil {
			return err
		}
		if penalty > 0 {
			if _, err := s.transactionRepo.Create(ctx, &domain.Transaction{
				UserID:        userID,
				Type:          domain.TxTypePenalty,
				Amount:        penalty,
				BalanceBefore: before - loan.RemainingAmount,
				BalanceAfter:  updated.Balance,
				Status:        domain.TxStatusCompleted,
				Description:   fmt.Sprintf("loan #%d overdue penalty, %d days", loan.ID, overdueDays),
				RelatedLoanID: &loan.ID,
			}); err != nil {
				return err
			}
		}

		loan.RemainingAmount = 0
		loan.PenaltyAmount = penalty
		loan.OverdueDays = overdueDays
		loan.Status = domain.LoanStatusRepaid
		loan.RepaidAt = &now
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		repaid = loan
		wallet = updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("loan repaid", zap.Int("loanID", loanID), zap.Int("userID", userID))
	return repaid, wallet, nil
}

// MarkOverdue recomputes overdue state for one loan. Penalty is derived from
// overdueDays, never incremented, so repeated runs on the same day are
// idempotent.
func (s *Service) MarkOverdue(ctx context.Context, loanID int, now time.Time) error {
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
		}
		if loan.Status != domain.LoanStatusActive && loan.Status != domain.LoanStatusOverdue {
			return nil
		}
		if loan.RemainingAmount <= 0 || !now.After(loan.DueDate) {
			return nil
		}

		overdueDays := OverdueDays(loan.DueDate, now)
		penalty := Penalty(loan.RemainingAmount, overdueDays)
		if loan.Status == domain.LoanStatusOverdue && loan.OverdueDays == overdueDays && loan.PenaltyAmount == penalty {
			return nil
		}

		loan.Status = domain.LoanStatusOverdue
		loan.OverdueDays = overdueDays
		loan.PenaltyAmount = penalty
		return s.loanRepo.Update(ctx, loan)
	})
}

func (s *Service) GetLoans(ctx context.Context, userID int, status string, page, limit int) ([]domain.Loan, int, error) {
	loans, total, err := s.loanRepo.FindByUserID(ctx, userID, status, page, limit)
	if err != nil {
		zap.L().Error("failed to get loans", zap.Error(err))
		return nil, 0, err
	}
	return loans, total, nil
}

func (s *Service) GetActiveLoans(ctx context.Context, userID int) ([]domain.Loan, error) {
	loans, err := s.loanRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get active loans", zap.Error(err))
		return nil, err
	}
	return loans, nil
}

func (s *Service) GetLoan(ctx context.Context, userID, loanID int) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil || loan.UserID != userID {
		return nil, fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
	}
	return loan, nil
}
