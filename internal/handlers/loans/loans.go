package loans

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
	Request(ctx context.Context, userID int, principal int64, termDays int, purpose string, clientTotal int64) (*domain.Loan, error)
	Approve(ctx context.Context, loanID int) (*domain.Loan, error)
	Reject(ctx context.Context, loanID int, reason string) (*domain.Loan, error)
	Cancel(ctx context.Context, userID, loanID int) (*domain.Loan, error)
	Repay(ctx context.Context, userID, loanID int) (*domain.Loan, *domain.Wallet, error)
	GetLoans(ctx context.Context, userID int, status string, page, limit int) ([]domain.Loan, int, error)
	GetActiveLoans(ctx context.Context, userID int) ([]domain.Loan, error)
	GetLoan(ctx context.Context, userID, loanID int) (*domain.Loan, error)
}

type LoanHandler struct {
	loanService Service
}

func New(loanService Service) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

func loanDTO(l *domain.Loan) dto.LoanResponseDTO {
	return dto.LoanResponseDTO{
		ID:              l.ID,
		PrincipalAmount: l.PrincipalAmount,
		InterestRate:    l.InterestRate,
		TermDays:        l.TermDays,
		TotalInterest:   l.TotalInterest,
		TotalAmount:     l.TotalAmount,
		RemainingAmount: l.RemainingAmount,
		PenaltyAmount:   l.PenaltyAmount,
		OverdueDays:     l.OverdueDays,
		Status:          l.Status,
		Purpose:         l.Purpose,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt,
		DueDate:         l.DueDate,
		RepaidAt:        l.RepaidAt,
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

func loanID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// RequestLoan godoc
//
//	@Summary		Request a loan
//	@Description	Create a pending loan request; interest and due date are fixed at origination
//	@Tags			Loans
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoanRequestDTO	true	"Loan request body"
//	@Success		200		{object}	dto.LoanResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient available credit"
//	@Failure		403		{object}	utils.Response	"Wallet not verified"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/request [post]
func (h *LoanHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.LoanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	loan, err := h.loanService.Request(r.Context(), userID, req.Amount, req.TermDays, req.Purpose, req.TotalAmount)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loanDTO(loan))
}

// GetLoans godoc
//
//	@Summary		Get loan history
//	@Description	List the authenticated user's loans, newest first, optionally filtered by status
//	@Tags			Loans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			limit	query		int		false	"Page size"		default(20)
//	@Success		200		{array}		dto.LoanResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/loans [get]
func (h *LoanHandler) GetLoans(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	page, limit := utils.ParsePagination(r)

	loans, total, err := h.loanService.GetLoans(r.Context(), userID, r.URL.Query().Get("status"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.LoanResponseDTO, len(loans))
	for i := range loans {
		response[i] = loanDTO(&loans[i])
	}
	utils.RespondWithPage(w, http.StatusOK, response, utils.NewPagination(page, limit, total))
}

// GetActiveLoans godoc
//
//	@Summary		Get active loans
//	@Description	List the authenticated user's active and overdue loans
//	@Tags			Loans
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.LoanResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/active [get]
func (h *LoanHandler) GetActiveLoans(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	loans, err := h.loanService.GetActiveLoans(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.LoanResponseDTO, len(loans))
	for i := range loans {
		response[i] = loanDTO(&loans[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetLoan godoc
//
//	@Summary		Get a single loan
//	@Description	Fetch one loan owned by the authenticated user
//	@Tags			Loans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.LoanResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/{id} [get]
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := loanID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	loan, err := h.loanService.GetLoan(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loanDTO(loan))
}

// RepayLoan godoc
//
//	@Summary		Repay a loan
//	@Description	Settle the outstanding amount plus accrued penalty in full from the wallet balance
//	@Tags			Loans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.RepayResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		409	{object}	utils.Response	"Loan not repayable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/{id}/repay [post]
func (h *LoanHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := loanID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	loan, wallet, err := h.loanService.Repay(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RepayResponseDTO{
		Loan:    loanDTO(loan),
		Balance: wallet.Balance,
	})
}

// CancelLoan godoc
//
//	@Summary		Cancel a loan request
//	@Description	Withdraw a pending loan request before it is disbursed
//	@Tags			Loans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.LoanResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		409	{object}	utils.Response	"Loan already disbursed"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/{id}/cancel [post]
func (h *LoanHandler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := loanID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	loan, err := h.loanService.Cancel(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loanDTO(loan))
}

// ApproveLoan godoc
//
//	@Summary		Approve a loan
//	@Description	Disburse a pending loan to the borrower's wallet
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.LoanResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient available credit"
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		409	{object}	utils.Response	"Loan not pending"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/loans/{id}/approve [post]
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id, err := loanID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	loan, err := h.loanService.Approve(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loanDTO(loan))
}

// RejectLoan godoc
//
//	@Summary		Reject a loan
//	@Description	Decline a pending loan request with a reason
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Loan ID"
//	@Param			request	body		dto.LoanRejectRequestDTO	true	"Rejection reason"
//	@Success		200		{object}	dto.LoanResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Loan not found"
//	@Failure		409		{object}	utils.Response	"Loan not pending"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/loans/{id}/reject [post]
func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	id, err := loanID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	var req dto.LoanRejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	loan, err := h.loanService.Reject(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loanDTO(loan))
}
