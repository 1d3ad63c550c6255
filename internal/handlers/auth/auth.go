package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/dto"
	"github.com/bilguunt/moneyapp/pkg/auth"
	"github.com/bilguunt/moneyapp/pkg/utils"
)

type Service interface {
	Register(ctx context.Context, phoneNumber, fullName, password string) (*domain.User, error)
	Authenticate(ctx context.Context, phoneNumber, password string) (*domain.User, error)
	GenerateToken(userID int) (string, error)
	Me(ctx context.Context, userID int) (*domain.User, *domain.Wallet, error)
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int, fullName string) (*domain.User, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create a user account with phone number and password; a wallet is opened alongside
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		409		{object}	utils.Response	"Phone number already registered"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.Register(r.Context(), req.PhoneNumber, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		Token: token,
		User: dto.UserDTO{
			ID:          user.ID,
			PhoneNumber: user.PhoneNumber,
			FullName:    user.FullName,
		},
	})
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with phone number and password and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.Authenticate(r.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		Token: token,
		User: dto.UserDTO{
			ID:          user.ID,
			PhoneNumber: user.PhoneNumber,
			FullName:    user.FullName,
		},
	})
}

func userDTO(u *domain.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
	}
}

// Me godoc
//
//	@Summary		Get own profile
//	@Description	Return the authenticated user's profile together with the wallet state
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.MeResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	user, wallet, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MeResponseDTO{
		User: userDTO(user),
		Wallet: dto.WalletResponseDTO{
			Balance:         wallet.Balance,
			IsVerified:      wallet.IsVerified,
			CreditLimit:     wallet.CreditLimit,
			TotalBorrowed:   wallet.TotalBorrowed,
			TotalRepaid:     wallet.TotalRepaid,
			AvailableCredit: wallet.AvailableCredit(),
		},
	})
}

// ChangePassword godoc
//
//	@Summary		Change password
//	@Description	Replace the account password after checking the current one
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ChangePasswordRequestDTO	true	"Change password request body"
//	@Success		200		{object}	utils.Response
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Current password does not match"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/change-password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.ChangePasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// UpdateProfile godoc
//
//	@Summary		Update profile
//	@Description	Change the account's display name
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.UpdateProfileRequestDTO	true	"Update profile request body"
//	@Success		200		{object}	dto.UserDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/update-profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.UpdateProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.UpdateProfile(r.Context(), userID, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, userDTO(user))
}
