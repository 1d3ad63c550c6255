package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/dto"
	"github.com/bilguunt/moneyapp/pkg/utils"
)

type Service interface {
	ConfirmPayment(ctx context.Context, reference string) (*domain.Transaction, error)
}

type PaymentHandler struct {
	paymentService Service
}

func New(paymentService Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Callback godoc
//
//	@Summary		Payment gateway callback
//	@Description	Confirm an externally paid invoice by its reference. Safe to retry: a reference that is already settled is acknowledged again.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.PaymentCallbackRequestDTO	true	"Callback payload"
//	@Success		200		{object}	dto.PaymentCallbackResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Unknown reference"
//	@Failure		409		{object}	utils.Response	"Transaction not payable"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/callback [post]
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentCallbackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trx, err := h.paymentService.ConfirmPayment(r.Context(), req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidStateTransition):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentCallbackResponseDTO{
		Reference: trx.Reference,
		Status:    trx.Status,
	})
}
