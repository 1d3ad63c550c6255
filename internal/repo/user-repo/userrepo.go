package userrepo

import (
	"context"
	"errors"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx,
		"SELECT id, phone_number, full_name, password_hash FROM users WHERE phone_number = $1",
		phoneNumber,
	).Scan(&user.ID, &user.PhoneNumber, &user.FullName, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx,
		"SELECT id, phone_number, full_name, password_hash FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.PhoneNumber, &user.FullName, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (phone_number, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := repo.db.QueryRow(ctx, query, user.PhoneNumber, user.FullName, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Update writes the mutable profile fields. Phone number is the login
// identity and never changes.
func (repo *Repository) Update(ctx context.Context, user *domain.User) error {
	_, err := repo.db.Exec(ctx,
		"UPDATE users SET full_name = $1, password_hash = $2 WHERE id = $3",
		user.FullName, user.PasswordHash, user.ID,
	)
	if err != nil {
		zap.L().Error("can't update user", zap.Error(err))
		return err
	}
	return nil
}
