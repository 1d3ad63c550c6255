package loanservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockLoanRepo, *MockWalletRepo, *MockTransactionRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	loanRepo := NewMockLoanRepo(ctrl)
	walletRepo := NewMockWalletRepo(ctrl)
	transactionRepo := NewMockTransactionRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	service := New(loanRepo, walletRepo, transactionRepo, txManager)
	defer ctrl.Finish()
	return service, loanRepo, walletRepo, transactionRepo, txManager
}

func expectTx(txManager *pg.MockTXManager) {
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func verifiedWallet(balance int64) *domain.Wallet {
	return &domain.Wallet{
		ID:          1,
		UserID:      1,
		Balance:     balance,
		IsVerified:  true,
		CreditLimit: 500000,
	}
}

func TestRequest(t *testing.T) {
	service, loanRepo, walletRepo, _, _ := NewMock(t)

	tests := []struct {
		name          string
		principal     int64
		termDays      int
		clientTotal   int64
		prepareMock   func()
		expectedError error
	}{
		{
			name:      "Successful request",
			principal: 100000,
			termDays:  30,
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(verifiedWallet(0), nil)
				loanRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "Client total matches server figure",
			principal: 100000,
			termDays:  30,
			// 100000 * 2.8% = 2800
			clientTotal: 102800,
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(verifiedWallet(0), nil)
				loanRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:        "Client total mismatch",
			principal:   100000,
			termDays:    30,
			clientTotal: 100000,
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(verifiedWallet(0), nil)
			},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "Amount below minimum",
			principal:     5000,
			termDays:      30,
			expectedError: domain.ErrValidation,
		},
		{
			name:          "Amount above maximum",
			principal:     6000000,
			termDays:      30,
			expectedError: domain.ErrValidation,
		},
		{
			name:          "Unsupported term",
			principal:     100000,
			termDays:      45,
			expectedError: domain.ErrValidation,
		},
		{
			name:      "Unverified wallet",
			principal: 100000,
			termDays:  30,
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Wallet{UserID: 1}, nil)
			},
			expectedError: domain.ErrNotVerified,
		},
		{
			name:      "Exceeds available credit",
			principal: 400000,
			termDays:  30,
			prepareMock: func() {
				w := verifiedWallet(0)
				w.TotalBorrowed = 200000
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(w, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			loan, err := service.Request(context.Background(), 1, tt.principal, tt.termDays, "rent", tt.clientTotal)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusPending, loan.Status)
				assert.Equal(t, tt.principal, loan.PrincipalAmount)
				assert.Equal(t, loan.TotalAmount, loan.RemainingAmount)
			}
		})
	}
}

func TestRequestFixesTerms(t *testing.T) {
	service, loanRepo, walletRepo, _, _ := NewMock(t)

	walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(verifiedWallet(0), nil)
	loanRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	loan, err := service.Request(context.Background(), 1, 100000, 30, "", 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2800), loan.TotalInterest)
	assert.Equal(t, int64(102800), loan.TotalAmount)
	assert.Equal(t, 2.8, loan.InterestRate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), loan.DueDate, time.Minute)
}

func TestApprove(t *testing.T) {
	service, loanRepo, walletRepo, transactionRepo, txManager := NewMock(t)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Successful disbursement",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, PrincipalAmount: 100000, TotalAmount: 102800,
					Status: domain.LoanStatusPending,
				}, nil)
				walletRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(verifiedWallet(50000), nil)
				walletRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, w *domain.Wallet) (*domain.Wallet, error) {
						assert.Equal(t, int64(150000), w.Balance)
						assert.Equal(t, int64(100000), w.TotalBorrowed)
						return w, nil
					},
				)
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.TxTypeLoanDisbursement, trx.Type)
						assert.Equal(t, int64(50000), trx.BalanceBefore)
						assert.Equal(t, int64(150000), trx.BalanceAfter)
						assert.Equal(t, domain.TxStatusCompleted, trx.Status)
						return trx, nil
					},
				)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "Loan not found",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "Loan already active",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusActive,
				}, nil)
			},
			expectedError: domain.ErrInvalidStateTransition,
		},
		{
			name: "Credit shrank since request",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, PrincipalAmount: 400000, Status: domain.LoanStatusPending,
				}, nil)
				w := verifiedWallet(0)
				w.TotalBorrowed = 200000
				walletRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(w, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			loan, err := service.Approve(context.Background(), 7)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusActive, loan.Status)
				assert.Equal(t, loan.TotalAmount, loan.RemainingAmount)
			}
		})
	}
}

func TestRepay(t *testing.T) {
	service, loanRepo, walletRepo, transactionRepo, txManager := NewMock(t)

	activeLoan := func() *domain.Loan {
		return &domain.Loan{
			ID: 7, UserID: 1,
			PrincipalAmount: 50000, TotalAmount: 51400, RemainingAmount: 51400,
			Status:  domain.LoanStatusActive,
			DueDate: time.Now().AddDate(0, 0, 10),
		}
	}

	tests := []struct {
		name            string
		prepareMock     func()
		expectedError   error
		expectedBalance int64
	}{
		{
			name: "Repay on time",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(activeLoan(), nil)
				walletRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(verifiedWallet(60000), nil)
				walletRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, w *domain.Wallet) (*domain.Wallet, error) {
						assert.Equal(t, int64(8600), w.Balance)
						assert.Equal(t, int64(50000), w.TotalRepaid)
						return w, nil
					},
				)
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.TxTypeLoanRepayment, trx.Type)
						assert.Equal(t, int64(51400), trx.Amount)
						return trx, nil
					},
				)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedBalance: 8600,
		},
		{
			name: "Overdue loan pays penalty in a separate entry",
			prepareMock: func() {
				expectTx(txManager)
				loan := activeLoan()
				loan.Status = domain.LoanStatusOverdue
				loan.DueDate = time.Now().AddDate(0, 0, -2).Add(-time.Hour)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(loan, nil)
				// 51400 remaining + 2 days * 1% = 1028 penalty
				walletRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(verifiedWallet(60000), nil)
				walletRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, w *domain.Wallet) (*domain.Wallet, error) {
						assert.Equal(t, int64(60000-51400-1028), w.Balance)
						return w, nil
					},
				)
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.TxTypeLoanRepayment, trx.Type)
						return trx, nil
					},
				)
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.TxTypePenalty, trx.Type)
						assert.Equal(t, int64(1028), trx.Amount)
						return trx, nil
					},
				)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedBalance: 60000 - 51400 - 1028,
		},
		{
			name: "Insufficient balance",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(activeLoan(), nil)
				walletRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(verifiedWallet(50000), nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name: "Not the owner",
			prepareMock: func() {
				expectTx(txManager)
				loan := activeLoan()
				loan.UserID = 2
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(loan, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "Already repaid",
			prepareMock: func() {
				expectTx(txManager)
				loan := activeLoan()
				loan.Status = domain.LoanStatusRepaid
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(loan, nil)
			},
			expectedError: domain.ErrInvalidStateTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			loan, wallet, err := service.Repay(context.Background(), 1, 7)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusRepaid, loan.Status)
				assert.Equal(t, int64(0), loan.RemainingAmount)
				assert.NotNil(t, loan.RepaidAt)
				assert.Equal(t, tt.expectedBalance, wallet.Balance)
			}
		})
	}
}

func TestMarkOverdue(t *testing.T) {
	service, loanRepo, _, _, txManager := NewMock(t)

	dueDate := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	now := dueDate.AddDate(0, 0, 3)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Marks active loan overdue with recomputed penalty",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, RemainingAmount: 102800,
					Status: domain.LoanStatusActive, DueDate: dueDate,
				}, nil)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, loan *domain.Loan) error {
						assert.Equal(t, domain.LoanStatusOverdue, loan.Status)
						assert.Equal(t, 3, loan.OverdueDays)
						assert.Equal(t, int64(3084), loan.PenaltyAmount)
						return nil
					},
				)
			},
		},
		{
			name: "Second run on the same day is a no-op",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, RemainingAmount: 102800,
					Status: domain.LoanStatusOverdue, DueDate: dueDate,
					OverdueDays: 3, PenaltyAmount: 3084,
				}, nil)
			},
		},
		{
			name: "Repaid loan is skipped",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusRepaid, DueDate: dueDate,
				}, nil)
			},
		},
		{
			name: "Not yet due",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, RemainingAmount: 102800,
					Status: domain.LoanStatusActive, DueDate: now.AddDate(0, 0, 5),
				}, nil)
			},
		},
		{
			name: "Repo error is propagated",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			err := service.MarkOverdue(context.Background(), 7, now)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReject(t *testing.T) {
	service, loanRepo, _, _, txManager := NewMock(t)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Rejects a pending loan",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusPending,
				}, nil)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, loan *domain.Loan) error {
						assert.Equal(t, domain.LoanStatusCancelled, loan.Status)
						assert.Equal(t, "income not confirmed", loan.RejectionReason)
						return nil
					},
				)
			},
		},
		{
			name: "Already disbursed",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusActive,
				}, nil)
			},
			expectedError: domain.ErrInvalidStateTransition,
		},
		{
			name: "Loan not found",
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			loan, err := service.Reject(context.Background(), 7, "income not confirmed")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusCancelled, loan.Status)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	service, loanRepo, _, _, txManager := NewMock(t)

	tests := []struct {
		name          string
		userID        int
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Owner cancels a pending loan",
			userID: 1,
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusPending,
				}, nil)
				loanRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "Someone else's loan reads as missing",
			userID: 2,
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusPending,
				}, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:   "Already disbursed",
			userID: 1,
			prepareMock: func() {
				expectTx(txManager)
				loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 7).Return(&domain.Loan{
					ID: 7, UserID: 1, Status: domain.LoanStatusActive,
				}, nil)
			},
			expectedError: domain.ErrInvalidStateTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			loan, err := service.Cancel(context.Background(), tt.userID, 7)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusCancelled, loan.Status)
			}
		})
	}
}

func TestGetLoans(t *testing.T) {
	service, loanRepo, _, _, _ := NewMock(t)

	expected := []domain.Loan{{ID: 1, UserID: 1, Status: domain.LoanStatusRepaid}}
	loanRepo.EXPECT().FindByUserID(gomock.Any(), 1, "repaid", 1, 20).Return(expected, 1, nil)

	loans, total, err := service.GetLoans(context.Background(), 1, "repaid", 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, expected, loans)
}

func TestGetLoan(t *testing.T) {
	service, loanRepo, _, _, _ := NewMock(t)

	loanRepo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.Loan{ID: 7, UserID: 2}, nil)

	loan, err := service.GetLoan(context.Background(), 1, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, loan)
}
