package walletrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

// ErrVersionConflict is returned when an optimistic update loses the race.
var ErrVersionConflict = errors.New("wallet version conflict")

const walletColumns = `id, user_id, balance, is_verified, credit_limit, total_borrowed, total_repaid, version`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.IsVerified, &w.CreditLimit, &w.TotalBorrowed, &w.TotalRepaid, &w.Version)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) CreateWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        INSERT INTO wallets (user_id, balance, credit_limit, total_borrowed, total_repaid)
        VALUES ($1, 0, 0, 0, 0)
        RETURNING ` + walletColumns
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		zap.L().Error("failed to create wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        SELECT ` + walletColumns + `
        FROM wallets
        WHERE user_id = $1
    `
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

// GetByUserIDForUpdate locks the wallet row for the rest of the surrounding
// transaction. Must run inside TXManager.Begin.
func (r *Repository) GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        SELECT ` + walletColumns + `
        FROM wallets
        WHERE user_id = $1
        FOR UPDATE
    `
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to lock wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

// Update writes the wallet back guarded by its version. A concurrent writer
// bumps the version first and this call returns ErrVersionConflict.
func (r *Repository) Update(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	query := `
        UPDATE wallets
        SET balance = $1, is_verified = $2, credit_limit = $3,
            total_borrowed = $4, total_repaid = $5, version = version + 1
        WHERE user_id = $6 AND version = $7
        RETURNING ` + walletColumns
	updated, err := scanWallet(r.db.QueryRow(ctx, query,
		wallet.Balance, wallet.IsVerified, wallet.CreditLimit,
		wallet.TotalBorrowed, wallet.TotalRepaid, wallet.UserID, wallet.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVersionConflict
		}
		zap.L().Error("failed to update wallet", zap.Error(err))
		return nil, err
	}
	return updated, nil
}
