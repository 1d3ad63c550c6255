package repo

import (
	"testing"

	loanrepo "github.com/bilguunt/moneyapp/internal/repo/loan-repo"
	transactionrepo "github.com/bilguunt/moneyapp/internal/repo/transaction-repo"
	userrepo "github.com/bilguunt/moneyapp/internal/repo/user-repo"
	walletrepo "github.com/bilguunt/moneyapp/internal/repo/wallet-repo"
	withdrawalrepo "github.com/bilguunt/moneyapp/internal/repo/withdrawal-repo"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.WalletRepo)
	assert.NotNil(t, repo.LoanRepo)
	assert.NotNil(t, repo.TransactionRepo)
	assert.NotNil(t, repo.WithdrawalRepo)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &walletrepo.Repository{}, repo.WalletRepo)
	assert.IsType(t, &loanrepo.Repository{}, repo.LoanRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.IsType(t, &withdrawalrepo.Repository{}, repo.WithdrawalRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
