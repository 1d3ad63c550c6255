package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/dto"
	"github.com/bilguunt/moneyapp/pkg/auth"
	"github.com/bilguunt/moneyapp/pkg/qpay"
	"github.com/bilguunt/moneyapp/pkg/utils"
)

type Service interface {
	GetWallet(ctx context.Context, userID int) (*domain.Wallet, error)
	Verify(ctx context.Context, userID int) (*domain.Wallet, *domain.Transaction, *qpay.Invoice, error)
	RequestDeposit(ctx context.Context, userID int, amount int64) (*domain.Transaction, *qpay.Invoice, error)
	GetTransactions(ctx context.Context, userID, page, limit int) ([]domain.Transaction, int, error)
	GetTransaction(ctx context.Context, userID, id int) (*domain.Transaction, error)
	AuditWallet(ctx context.Context, userID int) (*domain.WalletAudit, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func walletDTO(w *domain.Wallet) dto.WalletResponseDTO {
	return dto.WalletResponseDTO{
		Balance:         w.Balance,
		IsVerified:      w.IsVerified,
		CreditLimit:     w.CreditLimit,
		TotalBorrowed:   w.TotalBorrowed,
		TotalRepaid:     w.TotalRepaid,
		AvailableCredit: w.AvailableCredit(),
	}
}

func transactionDTO(t *domain.Transaction) dto.TransactionResponseDTO {
	return dto.TransactionResponseDTO{
		ID:            t.ID,
		Type:          t.Type,
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Status:        t.Status,
		Reference:     t.Reference,
		Description:   t.Description,
		RelatedLoanID: t.RelatedLoanID,
		CreatedAt:     t.CreatedAt,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotVerified):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetWallet godoc
//
//	@Summary		Get wallet
//	@Description	Retrieve the balance, verification status and credit figures for the authenticated user
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.WalletResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Wallet not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	wallet, err := h.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, walletDTO(wallet))
}

// Verify godoc
//
//	@Summary		Verify wallet
//	@Description	Charge the verification fee and unlock credit. Returns 402 with a payment invoice when the balance does not cover the fee.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.VerifyResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	dto.VerifyResponseDTO	"Verification fee invoice issued"
//	@Failure		409	{object}	utils.Response	"Wallet already verified"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/verify [post]
func (h *WalletHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	wallet, trx, invoice, err := h.walletService.Verify(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrExternalPaymentPending) {
			utils.RespondWithJSON(w, http.StatusPaymentRequired, dto.VerifyResponseDTO{
				Wallet:     walletDTO(wallet),
				Reference:  trx.Reference,
				PaymentURL: invoice.PaymentURL,
			})
			return
		}
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.VerifyResponseDTO{
		Wallet: walletDTO(wallet),
	})
}

// Deposit godoc
//
//	@Summary		Request a deposit
//	@Description	Issue a QPay invoice for topping up the wallet; the balance is credited once the gateway confirms payment
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit request body"
//	@Success		200		{object}	dto.DepositResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/deposit [post]
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trx, invoice, err := h.walletService.RequestDeposit(r.Context(), userID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DepositResponseDTO{
		Reference:  trx.Reference,
		PaymentURL: invoice.PaymentURL,
		Amount:     trx.Amount,
	})
}

// GetTransactions godoc
//
//	@Summary		Get transaction history
//	@Description	List the authenticated user's ledger entries, newest first
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number"	default(1)
//	@Param			limit	query		int	false	"Page size"		default(20)
//	@Success		200		{array}		dto.TransactionResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	page, limit := utils.ParsePagination(r)

	transactions, total, err := h.walletService.GetTransactions(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.TransactionResponseDTO, len(transactions))
	for i := range transactions {
		response[i] = transactionDTO(&transactions[i])
	}
	utils.RespondWithPage(w, http.StatusOK, response, utils.NewPagination(page, limit, total))
}

// GetTransaction godoc
//
//	@Summary		Get a single transaction
//	@Description	Fetch one ledger entry owned by the authenticated user
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Transaction ID"
//	@Success		200	{object}	dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Transaction not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/transactions/{id} [get]
func (h *WalletHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	trx, err := h.walletService.GetTransaction(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, transactionDTO(trx))
}

// AuditWallet godoc
//
//	@Summary		Audit a wallet
//	@Description	Operator view of one wallet: balance, pending withdrawal hold and the last completed ledger entry
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	dto.WalletAuditDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Wallet not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/wallets/{userID}/audit [get]
func (h *WalletHandler) AuditWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	audit, err := h.walletService.AuditWallet(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.WalletAuditDTO{
		Wallet:   walletDTO(audit.Wallet),
		Reserved: audit.Reserved,
	}
	if audit.LastCompleted != nil {
		last := transactionDTO(audit.LastCompleted)
		resp.LastCompleted = &last
		resp.Reconciles = audit.LastCompleted.BalanceAfter == audit.Wallet.Balance+audit.Reserved
	} else {
		resp.Reconciles = audit.Wallet.Balance+audit.Reserved == 0
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
