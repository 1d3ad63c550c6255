package service

import (
	"github.com/bilguunt/moneyapp/internal/handlers/auth"
	"github.com/bilguunt/moneyapp/internal/handlers/loans"
	"github.com/bilguunt/moneyapp/internal/handlers/payments"
	"github.com/bilguunt/moneyapp/internal/handlers/wallet"
	"github.com/bilguunt/moneyapp/internal/handlers/withdrawals"

	pkgauth "github.com/bilguunt/moneyapp/pkg/auth"
	"github.com/bilguunt/moneyapp/pkg/qpay"

	"github.com/bilguunt/moneyapp/internal/pg"
	"github.com/bilguunt/moneyapp/internal/repo"
	authservice "github.com/bilguunt/moneyapp/internal/service/authservice"
	loanservice "github.com/bilguunt/moneyapp/internal/service/loanservice"
	walletservice "github.com/bilguunt/moneyapp/internal/service/walletservice"
	withdrawalservice "github.com/bilguunt/moneyapp/internal/service/withdrawalservice"
)

type Services struct {
	AuthService       auth.Service
	WalletService     wallet.Service
	LoanService       loans.Service
	WithdrawalService withdrawals.Service
	PaymentService    payments.Service

	LoanJobs *loanservice.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, paymentClient qpay.ClientI) *Services {
	walletService := walletservice.New(repo.WalletRepo, repo.TransactionRepo, paymentClient, txManager)
	loanService := loanservice.New(repo.LoanRepo, repo.WalletRepo, repo.TransactionRepo, txManager)
	withdrawalService := withdrawalservice.New(repo.WithdrawalRepo, repo.WalletRepo, repo.TransactionRepo, txManager)
	authService := authservice.New(repo.UserRepo, walletService, pkgauth.NewHashService(), &pkgauth.JWTService{})

	return &Services{
		AuthService:       authService,
		WalletService:     walletService,
		LoanService:       loanService,
		WithdrawalService: withdrawalService,
		PaymentService:    walletService,

		LoanJobs: loanService,
	}
}
