package walletrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

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

func walletRows(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "balance", "is_verified", "credit_limit", "total_borrowed", "total_repaid", "version"}).
		AddRow(w.ID, w.UserID, w.Balance, w.IsVerified, w.CreditLimit, w.TotalBorrowed, w.TotalRepaid, w.Version)
}

func TestRepository_CreateWallet(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		userID    int
		mockSetup func()
		expectErr bool
	}{
		{
			name:   "Successfully creates wallet",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`
        INSERT INTO wallets (user_id, balance, credit_limit, total_borrowed, total_repaid)
        VALUES ($1, 0, 0, 0, 0)
        RETURNING id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version`)).
					WithArgs(1).
					WillReturnRows(walletRows(&domain.Wallet{ID: 1, UserID: 1}))
			},
			expectErr: false,
		},
		{
			name:   "Database error",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO wallets`)).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wallet, err := repo.CreateWallet(context.Background(), tt.userID)

			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, wallet)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.userID, wallet.UserID)
				assert.Equal(t, int64(0), wallet.Balance)
				assert.False(t, wallet.IsVerified)
			}
		})
	}
}

func TestRepository_GetByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		userID    int
		mockSetup func()
		expectErr bool
		result    *domain.Wallet
	}{
		{
			name:   "Valid userID returns wallet",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version
        FROM wallets
        WHERE user_id = $1`)).
					WithArgs(1).
					WillReturnRows(walletRows(&domain.Wallet{
						ID: 1, UserID: 1, Balance: 80000, IsVerified: true,
						CreditLimit: 500000, TotalBorrowed: 100000, TotalRepaid: 40000, Version: 3,
					}))
			},
			result: &domain.Wallet{
				ID: 1, UserID: 1, Balance: 80000, IsVerified: true,
				CreditLimit: 500000, TotalBorrowed: 100000, TotalRepaid: 40000, Version: 3,
			},
		},
		{
			name:   "Non-existing userID returns nil",
			userID: 99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version
        FROM wallets
        WHERE user_id = $1`)).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:   "Database error",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version
        FROM wallets
        WHERE user_id = $1`)).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
			result:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetByUserID(context.Background(), tt.userID)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_GetByUserIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version
        FROM wallets
        WHERE user_id = $1
        FOR UPDATE`)).
		WithArgs(1).
		WillReturnRows(walletRows(&domain.Wallet{ID: 1, UserID: 1, Balance: 80000, Version: 3}))

	wallet, err := repo.GetByUserIDForUpdate(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(80000), wallet.Balance)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name        string
		wallet      *domain.Wallet
		mockSetup   func()
		expectedErr error
	}{
		{
			name: "Successfully updates wallet",
			wallet: &domain.Wallet{
				ID: 1, UserID: 1, Balance: 30000, IsVerified: true,
				CreditLimit: 500000, TotalBorrowed: 100000, TotalRepaid: 40000, Version: 3,
			},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE wallets
        SET balance = $1, is_verified = $2, credit_limit = $3,
            total_borrowed = $4, total_repaid = $5, version = version + 1
        WHERE user_id = $6 AND version = $7`)).
					WithArgs(int64(30000), true, int64(500000), int64(100000), int64(40000), 1, 3).
					WillReturnRows(walletRows(&domain.Wallet{
						ID: 1, UserID: 1, Balance: 30000, IsVerified: true,
						CreditLimit: 500000, TotalBorrowed: 100000, TotalRepaid: 40000, Version: 4,
					}))
			},
		},
		{
			name: "Concurrent writer wins the version race",
			wallet: &domain.Wallet{
				ID: 1, UserID: 1, Balance: 30000, IsVerified: true,
				CreditLimit: 500000, TotalBorrowed: 100000, TotalRepaid: 40000, Version: 3,
			},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE wallets`)).
					WithArgs(int64(30000), true, int64(500000), int64(100000), int64(40000), 1, 3).
					WillReturnError(pgx.ErrNoRows)
			},
			expectedErr: ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			updated, err := repo.Update(context.Background(), tt.wallet)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, updated)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wallet.Version+1, updated.Version)
				assert.Equal(t, tt.wallet.Balance, updated.Balance)
			}
		})
	}
}
