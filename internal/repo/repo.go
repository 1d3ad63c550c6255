package repo

import (
	"github.com/bilguunt/moneyapp/internal/pg"
	loanrepo "github.com/bilguunt/moneyapp/internal/repo/loan-repo"
	transactionrepo "github.com/bilguunt/moneyapp/internal/repo/transaction-repo"
	userrepo "github.com/bilguunt/moneyapp/internal/repo/user-repo"
	walletrepo "github.com/bilguunt/moneyapp/internal/repo/wallet-repo"
	withdrawalrepo "github.com/bilguunt/moneyapp/internal/repo/withdrawal-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	WalletRepo      *walletrepo.Repository
	LoanRepo        *loanrepo.Repository
	TransactionRepo *transactionrepo.Repository
	WithdrawalRepo  *withdrawalrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		WalletRepo:      walletrepo.New(conn),
		LoanRepo:        loanrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		WithdrawalRepo:  withdrawalrepo.New(conn),
	}
}
