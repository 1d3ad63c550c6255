package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/bilguunt/moneyapp/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

var withdrawalColumnNames = []string{
	"id", "user_id", "amount", "bank_name", "bank_account_number", "account_name",
	"notes", "status", "balance_before", "rejection_reason", "transaction_id", "created_at",
	"processed_at", "completed_at",
}

func withdrawalRow(wd *domain.WithdrawalRequest) *pgxmock.Rows {
	return pgxmock.NewRows(withdrawalColumnNames).AddRow(
		wd.ID, wd.UserID, wd.Amount, wd.BankName, wd.BankAccountNumber, wd.AccountName,
		wd.Notes, wd.Status, wd.BalanceBefore, wd.RejectionReason, wd.TransactionID,
		wd.CreatedAt, wd.ProcessedAt, wd.CompletedAt,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	withdrawal := &domain.WithdrawalRequest{
		UserID:            1,
		Amount:            50000,
		BankName:          "Khan Bank",
		BankAccountNumber: "5041234567",
		AccountName:       "Bat-Erdene Dorj",
		Status:            domain.WithdrawalStatusPending,
		BalanceBefore:     80000,
		TransactionID:     9,
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Successfully creates withdrawal request",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO withdrawal_requests`)).
					WithArgs(withdrawal.UserID, withdrawal.Amount, withdrawal.BankName,
						withdrawal.BankAccountNumber, withdrawal.AccountName, withdrawal.Notes,
						withdrawal.Status, withdrawal.BalanceBefore, withdrawal.TransactionID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(3, time.Now()))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO withdrawal_requests`)).
					WithArgs(withdrawal.UserID, withdrawal.Amount, withdrawal.BankName,
						withdrawal.BankAccountNumber, withdrawal.AccountName, withdrawal.Notes,
						withdrawal.Status, withdrawal.BalanceBefore, withdrawal.TransactionID).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			created, err := repo.Create(context.Background(), withdrawal)

			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 3, created.ID)
			}
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := NewMock(t)

	stored := &domain.WithdrawalRequest{
		ID: 3, UserID: 1, Amount: 50000, BankName: "Khan Bank",
		Status: domain.WithdrawalStatusPending, BalanceBefore: 80000,
		TransactionID: 9, CreatedAt: time.Now(),
	}

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		found     bool
	}{
		{
			name: "Existing request",
			id:   3,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM withdrawal_requests
        WHERE id = $1`)).
					WithArgs(3).
					WillReturnRows(withdrawalRow(stored))
			},
			found: true,
		},
		{
			name: "Missing request returns nil",
			id:   99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM withdrawal_requests
        WHERE id = $1`)).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wd, err := repo.GetByID(context.Background(), tt.id)
			assert.NoError(t, err)
			if tt.found {
				assert.Equal(t, stored.ID, wd.ID)
				assert.Equal(t, stored.TransactionID, wd.TransactionID)
			} else {
				assert.Nil(t, wd)
			}
		})
	}
}

func TestRepository_GetByIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)

	stored := &domain.WithdrawalRequest{
		ID: 3, UserID: 1, Amount: 50000, BankName: "Khan Bank",
		Status: domain.WithdrawalStatusPending, BalanceBefore: 80000,
		TransactionID: 9, CreatedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM withdrawal_requests
        WHERE id = $1
        FOR UPDATE`)).
		WithArgs(3).
		WillReturnRows(withdrawalRow(stored))

	wd, err := repo.GetByIDForUpdate(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, wd.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	wd, err = repo.GetByIDForUpdate(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, wd)
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	stored := &domain.WithdrawalRequest{
		ID: 3, UserID: 1, Amount: 50000, BankName: "Khan Bank",
		Status: domain.WithdrawalStatusPending, BalanceBefore: 80000,
		TransactionID: 9, CreatedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*)`)).
		WithArgs(1, "pending").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`)).
		WithArgs(1, "pending", 20, 0).
		WillReturnRows(withdrawalRow(stored))

	withdrawals, total, err := repo.FindByUserID(context.Background(), 1, "pending", 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, withdrawals, 1)
	assert.Equal(t, 3, withdrawals[0].ID)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)

	now := time.Now()
	withdrawal := &domain.WithdrawalRequest{
		ID: 3, Status: domain.WithdrawalStatusRejected,
		RejectionReason: "account name mismatch", ProcessedAt: &now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE withdrawal_requests`)).
		WithArgs(withdrawal.Status, withdrawal.RejectionReason, withdrawal.ProcessedAt,
			withdrawal.CompletedAt, withdrawal.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), withdrawal)
	assert.NoError(t, err)
}
