package handlers

import (
	"net/http"

	_ "github.com/bilguunt/moneyapp/docs"
	authhandlers "github.com/bilguunt/moneyapp/internal/handlers/auth"
	loanhandlers "github.com/bilguunt/moneyapp/internal/handlers/loans"
	paymenthandlers "github.com/bilguunt/moneyapp/internal/handlers/payments"
	wallethandlers "github.com/bilguunt/moneyapp/internal/handlers/wallet"
	withdrawalhandlers "github.com/bilguunt/moneyapp/internal/handlers/withdrawals"
	"github.com/bilguunt/moneyapp/internal/service"
	"github.com/bilguunt/moneyapp/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	GetTransaction(w http.ResponseWriter, r *http.Request)
	AuditWallet(w http.ResponseWriter, r *http.Request)
}

type LoanHandler interface {
	RequestLoan(w http.ResponseWriter, r *http.Request)
	GetLoans(w http.ResponseWriter, r *http.Request)
	GetActiveLoans(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	RepayLoan(w http.ResponseWriter, r *http.Request)
	CancelLoan(w http.ResponseWriter, r *http.Request)
	ApproveLoan(w http.ResponseWriter, r *http.Request)
	RejectLoan(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	RequestWithdrawal(w http.ResponseWriter, r *http.Request)
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
	GetWithdrawal(w http.ResponseWriter, r *http.Request)
	CancelWithdrawal(w http.ResponseWriter, r *http.Request)
	ApproveWithdrawal(w http.ResponseWriter, r *http.Request)
	CompleteWithdrawal(w http.ResponseWriter, r *http.Request)
	RejectWithdrawal(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Callback(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler       AuthHandler
	WalletHandler     WalletHandler
	LoanHandler       LoanHandler
	WithdrawalHandler WithdrawalHandler
	PaymentHandler    PaymentHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:       authhandlers.New(s.AuthService),
		WalletHandler:     wallethandlers.New(s.WalletService),
		LoanHandler:       loanhandlers.New(s.LoanService),
		WithdrawalHandler: withdrawalhandlers.New(s.WithdrawalService),
		PaymentHandler:    paymenthandlers.New(s.PaymentService),
	}
}

// InitRoutes mounts the API. Money-moving endpoints sit behind the
// idempotency middleware so the mobile client can retry safely.
func (h *Handlers) InitRoutes(r chi.Router, idempotent func(http.Handler) http.Handler) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.AuthHandler.Register)
		r.Post("/auth/login", h.AuthHandler.Login)

		r.Post("/payments/callback", h.PaymentHandler.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)

			r.Get("/auth/me", h.AuthHandler.Me)
			r.Put("/auth/change-password", h.AuthHandler.ChangePassword)
			r.Put("/auth/update-profile", h.AuthHandler.UpdateProfile)

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetWallet)
				r.Get("/transactions", h.WalletHandler.GetTransactions)
				r.Get("/transactions/{id}", h.WalletHandler.GetTransaction)
				r.Get("/withdrawals", h.WithdrawalHandler.GetWithdrawals)
				r.Get("/withdrawals/{id}", h.WithdrawalHandler.GetWithdrawal)

				r.Group(func(r chi.Router) {
					r.Use(idempotent)
					r.Post("/verify", h.WalletHandler.Verify)
					r.Post("/deposit", h.WalletHandler.Deposit)
					r.Post("/withdraw", h.WithdrawalHandler.RequestWithdrawal)
					r.Post("/withdrawals/{id}/cancel", h.WithdrawalHandler.CancelWithdrawal)
				})
			})

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", h.LoanHandler.GetLoans)
				r.Get("/active", h.LoanHandler.GetActiveLoans)
				r.Get("/{id}", h.LoanHandler.GetLoan)

				r.Group(func(r chi.Router) {
					r.Use(idempotent)
					r.Post("/request", h.LoanHandler.RequestLoan)
					r.Post("/{id}/repay", h.LoanHandler.RepayLoan)
					r.Post("/{id}/cancel", h.LoanHandler.CancelLoan)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Post("/loans/{id}/approve", h.LoanHandler.ApproveLoan)
				r.Post("/loans/{id}/reject", h.LoanHandler.RejectLoan)
				r.Post("/withdrawals/{id}/approve", h.WithdrawalHandler.ApproveWithdrawal)
				r.Post("/withdrawals/{id}/complete", h.WithdrawalHandler.CompleteWithdrawal)
				r.Post("/withdrawals/{id}/reject", h.WithdrawalHandler.RejectWithdrawal)
				r.Get("/wallets/{userID}/audit", h.WalletHandler.AuditWallet)
			})
		})
	})

	return r
}
