package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/dto"
	pkgauth "github.com/bilguunt/moneyapp/pkg/auth"
)

func authCtx() context.Context {
	return context.WithValue(context.Background(), pkgauth.UserIDKey, 1)
}

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

// decodeData unwraps the {success, data} envelope around handler payloads.
func decodeData(t *testing.T, body *bytes.Buffer, v any) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(body.Bytes(), &env))
	assert.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRegisterHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful registration",
			body: `{"phone_number":"99112233","full_name":"Bat-Erdene Dorj","password":"secret1"}`,
			prepareMock: func() {
				service.EXPECT().
					Register(gomock.Any(), "99112233", "Bat-Erdene Dorj", "secret1").
					Return(&domain.User{ID: 1, PhoneNumber: "99112233", FullName: "Bat-Erdene Dorj"}, nil)
				service.EXPECT().GenerateToken(1).Return("token-1", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid request body",
			body:         `{"phone_number":invalid}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Invalid phone number",
			body: `{"phone_number":"9911","password":"secret1"}`,
			prepareMock: func() {
				service.EXPECT().
					Register(gomock.Any(), "9911", "", "secret1").
					Return(nil, fmt.Errorf("phone number must be 8 digits: %w", domain.ErrValidation))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate phone number",
			body: `{"phone_number":"99112233","password":"secret1"}`,
			prepareMock: func() {
				service.EXPECT().
					Register(gomock.Any(), "99112233", "", "secret1").
					Return(nil, errors.New("phone number already registered"))
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Register(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, "Bearer token-1", w.Header().Get("Authorization"))
				var body dto.AuthResponseDTO
				decodeData(t, w.Body, &body)
				assert.Equal(t, "token-1", body.Token)
				assert.Equal(t, "99112233", body.User.PhoneNumber)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful login",
			body: `{"phone_number":"99112233","password":"secret1"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(gomock.Any(), "99112233", "secret1").
					Return(&domain.User{ID: 1, PhoneNumber: "99112233"}, nil)
				service.EXPECT().GenerateToken(1).Return("token-1", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid request body",
			body:         `{"phone_number":invalid}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Invalid credentials",
			body: `{"phone_number":"99112233","password":"wrong"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(gomock.Any(), "99112233", "wrong").
					Return(nil, errors.New("invalid credentials"))
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Token generation failure",
			body: `{"phone_number":"99112233","password":"secret1"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(gomock.Any(), "99112233", "secret1").
					Return(&domain.User{ID: 1}, nil)
				service.EXPECT().GenerateToken(1).Return("", errors.New("signing error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Login(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestMeHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Profile with wallet",
			prepareMock: func() {
				service.EXPECT().Me(gomock.Any(), 1).Return(
					&domain.User{ID: 1, PhoneNumber: "99112233", FullName: "Bat-Erdene Dorj"},
					&domain.Wallet{UserID: 1, Balance: 5000, IsVerified: true, CreditLimit: 500000},
					nil,
				)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Unknown user",
			prepareMock: func() {
				service.EXPECT().Me(gomock.Any(), 1).Return(nil, nil,
					fmt.Errorf("user 1: %w", domain.ErrNotFound))
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(authCtx())
			w := httptest.NewRecorder()
			handler.Me(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.MeResponseDTO
				decodeData(t, w.Body, &body)
				assert.Equal(t, "99112233", body.User.PhoneNumber)
				assert.Equal(t, int64(5000), body.Wallet.Balance)
				assert.True(t, body.Wallet.IsVerified)
			}
		})
	}
}

func TestChangePasswordHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Password changed",
			body: `{"current_password":"secret1","new_password":"newsecret"}`,
			prepareMock: func() {
				service.EXPECT().ChangePassword(gomock.Any(), 1, "secret1", "newsecret").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid request body",
			body:         `{"current_password":invalid}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "New password too short",
			body: `{"current_password":"secret1","new_password":"abc"}`,
			prepareMock: func() {
				service.EXPECT().ChangePassword(gomock.Any(), 1, "secret1", "abc").
					Return(fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Wrong current password",
			body: `{"current_password":"wrong","new_password":"newsecret"}`,
			prepareMock: func() {
				service.EXPECT().ChangePassword(gomock.Any(), 1, "wrong", "newsecret").
					Return(errors.New("invalid credentials"))
			},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPut, "/api/auth/change-password", strings.NewReader(tt.body)).
				WithContext(authCtx())
			w := httptest.NewRecorder()
			handler.ChangePassword(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Name updated",
			body: `{"full_name":"Saruul"}`,
			prepareMock: func() {
				service.EXPECT().UpdateProfile(gomock.Any(), 1, "Saruul").
					Return(&domain.User{ID: 1, PhoneNumber: "99112233", FullName: "Saruul"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Empty name",
			body: `{"full_name":""}`,
			prepareMock: func() {
				service.EXPECT().UpdateProfile(gomock.Any(), 1, "").
					Return(nil, fmt.Errorf("full name must be 1-100 characters: %w", domain.ErrValidation))
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPut, "/api/auth/update-profile", strings.NewReader(tt.body)).
				WithContext(authCtx())
			w := httptest.NewRecorder()
			handler.UpdateProfile(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.UserDTO
				decodeData(t, w.Body, &body)
				assert.Equal(t, "Saruul", body.FullName)
			}
		})
	}
}
