package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/bilguunt/moneyapp/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_FindByPhone(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		phone     string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:  "Existing phone returns user",
			phone: "99112233",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "phone_number", "full_name", "password_hash"}).
					AddRow(1, "99112233", "Bat-Erdene Dorj", "hashed")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, phone_number, full_name, password_hash FROM users WHERE phone_number = $1`)).
					WithArgs("99112233").
					WillReturnRows(rows)
			},
			result: &domain.User{ID: 1, PhoneNumber: "99112233", FullName: "Bat-Erdene Dorj", PasswordHash: "hashed"},
		},
		{
			name:  "Unknown phone returns nil",
			phone: "88110099",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, phone_number, full_name, password_hash FROM users WHERE phone_number = $1`)).
					WithArgs("88110099").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:  "Database error",
			phone: "99112233",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, phone_number, full_name, password_hash FROM users WHERE phone_number = $1`)).
					WithArgs("99112233").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.FindByPhone(context.Background(), tt.phone)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, user)
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows([]string{"id", "phone_number", "full_name", "password_hash"}).
		AddRow(1, "99112233", "Bat-Erdene Dorj", "hashed")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, phone_number, full_name, password_hash FROM users WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "99112233", user.PhoneNumber)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	user, err = repo.GetByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET full_name = $1, password_hash = $2 WHERE id = $3`)).
		WithArgs("Saruul", "rehashed", 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &domain.User{
		ID: 1, FullName: "Saruul", PasswordHash: "rehashed",
	})
	assert.NoError(t, err)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Successfully creates user",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (phone_number, full_name, password_hash)`)).
					WithArgs("99112233", "Bat-Erdene Dorj", "hashed").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (phone_number, full_name, password_hash)`)).
					WithArgs("99112233", "Bat-Erdene Dorj", "hashed").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.Create(context.Background(), &domain.User{
				PhoneNumber: "99112233", FullName: "Bat-Erdene Dorj", PasswordHash: "hashed",
			})

			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, user.ID)
			}
		})
	}
}
