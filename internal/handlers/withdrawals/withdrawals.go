package withdrawals

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
	"github.com/bilguunt/moneyapp/pkg/utils"
)

type Service interface {
	Request(ctx context.Context, userID int, amount int64, bankName, accountNumber, accountName, notes string) (*domain.WithdrawalRequest, error)
	Approve(ctx context.Context, id int) (*domain.WithdrawalRequest, error)
	Complete(ctx context.Context, id int) (*domain.WithdrawalRequest, error)
	Reject(ctx context.Context, id int, reason string) (*domain.WithdrawalRequest, error)
	Cancel(ctx context.Context, userID, id int) (*domain.WithdrawalRequest, error)
	GetWithdrawals(ctx context.Context, userID int, status string, page, limit int) ([]domain.WithdrawalRequest, int, error)
	GetWithdrawal(ctx context.Context, userID, id int) (*domain.WithdrawalRequest, error)
}

type WithdrawalHandler struct {
	withdrawalService Service
}

func New(withdrawalService Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

func withdrawalDTO(wd *domain.WithdrawalRequest) dto.WithdrawalResponseDTO {
	return dto.WithdrawalResponseDTO{
		ID:                wd.ID,
		Amount:            wd.Amount,
		BankName:          wd.BankName,
		BankAccountNumber: wd.BankAccountNumber,
		AccountName:       wd.AccountName,
		Notes:             wd.Notes,
		Status:            wd.Status,
		RejectionReason:   wd.RejectionReason,
		CreatedAt:         wd.CreatedAt,
		ProcessedAt:       wd.ProcessedAt,
		CompletedAt:       wd.CompletedAt,
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

func withdrawalID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// RequestWithdrawal godoc
//
//	@Summary		Request a withdrawal
//	@Description	Reserve the amount immediately and queue a bank transfer for manual processing
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawalRequestDTO	true	"Withdrawal request body"
//	@Success		200		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient balance"
//	@Failure		403		{object}	utils.Response	"Wallet not verified"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/withdraw [post]
func (h *WithdrawalHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	withdrawal, err := h.withdrawalService.Request(r.Context(), userID,
		req.Amount, req.BankName, req.BankAccountNumber, req.AccountName, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}

// GetWithdrawals godoc
//
//	@Summary		Get withdrawal history
//	@Description	List the authenticated user's withdrawal requests, newest first, optionally filtered by status
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			limit	query		int		false	"Page size"		default(20)
//	@Success		200		{array}		dto.WithdrawalResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/withdrawals [get]
func (h *WithdrawalHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	page, limit := utils.ParsePagination(r)

	withdrawals, total, err := h.withdrawalService.GetWithdrawals(r.Context(), userID, r.URL.Query().Get("status"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.WithdrawalResponseDTO, len(withdrawals))
	for i := range withdrawals {
		response[i] = withdrawalDTO(&withdrawals[i])
	}
	utils.RespondWithPage(w, http.StatusOK, response, utils.NewPagination(page, limit, total))
}

// GetWithdrawal godoc
//
//	@Summary		Get a single withdrawal request
//	@Description	Fetch one withdrawal request owned by the authenticated user
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/withdrawals/{id} [get]
func (h *WithdrawalHandler) GetWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := withdrawalID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.GetWithdrawal(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}

// CancelWithdrawal godoc
//
//	@Summary		Cancel a withdrawal request
//	@Description	Call back a pending withdrawal; the reserved amount is refunded to the wallet
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		409	{object}	utils.Response	"Withdrawal already processed"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/withdrawals/{id}/cancel [post]
func (h *WithdrawalHandler) CancelWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := withdrawalID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.Cancel(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}

// ApproveWithdrawal godoc
//
//	@Summary		Approve a withdrawal
//	@Description	Acknowledge a pending withdrawal request for transfer
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		409	{object}	utils.Response	"Withdrawal not pending"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals/{id}/approve [post]
func (h *WithdrawalHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := withdrawalID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.Approve(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}

// CompleteWithdrawal godoc
//
//	@Summary		Complete a withdrawal
//	@Description	Mark an approved bank transfer as settled
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		409	{object}	utils.Response	"Withdrawal not approved"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals/{id}/complete [post]
func (h *WithdrawalHandler) CompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := withdrawalID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.Complete(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}

// RejectWithdrawal godoc
//
//	@Summary		Reject a withdrawal
//	@Description	Decline a withdrawal request; the reserved amount is refunded to the wallet
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Withdrawal ID"
//	@Param			request	body		dto.WithdrawalRejectRequestDTO	true	"Rejection reason"
//	@Success		200		{object}	dto.WithdrawalResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Withdrawal not found"
//	@Failure		409		{object}	utils.Response	"Withdrawal already settled"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals/{id}/reject [post]
func (h *WithdrawalHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := withdrawalID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	var req dto.WithdrawalRejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	withdrawal, err := h.withdrawalService.Reject(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, withdrawalDTO(withdrawal))
}
