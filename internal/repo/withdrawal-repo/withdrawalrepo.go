package withdrawalrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

const withdrawalColumns = `id, user_id, amount, bank_name, bank_account_number, account_name,
        notes, status, balance_before, rejection_reason, transaction_id, created_at,
        processed_at, completed_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var wd domain.WithdrawalRequest
	err := row.Scan(
		&wd.ID, &wd.UserID, &wd.Amount, &wd.BankName, &wd.BankAccountNumber, &wd.AccountName,
		&wd.Notes, &wd.Status, &wd.BalanceBefore, &wd.RejectionReason, &wd.TransactionID,
		&wd.CreatedAt, &wd.ProcessedAt, &wd.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

func (r *Repository) Create(ctx context.Context, withdrawal *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error) {
	query := `
        INSERT INTO withdrawal_requests (user_id, amount, bank_name, bank_account_number,
            account_name, notes, status, balance_before, transaction_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		withdrawal.UserID, withdrawal.Amount, withdrawal.BankName, withdrawal.BankAccountNumber,
		withdrawal.AccountName, withdrawal.Notes, withdrawal.Status, withdrawal.BalanceBefore,
		withdrawal.TransactionID,
	).Scan(&withdrawal.ID, &withdrawal.CreatedAt)
	if err != nil {
		zap.L().Error("can't save withdrawal request", zap.Error(err))
		return nil, err
	}
	return withdrawal, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + withdrawalColumns + `
        FROM withdrawal_requests
        WHERE id = $1
    `
	wd, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find withdrawal request", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

// GetByIDForUpdate locks the request row for the rest of the transaction.
// The approve/complete/reject/cancel transitions read through here so a
// refund can never be posted twice.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int) (*domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + withdrawalColumns + `
        FROM withdrawal_requests
        WHERE id = $1
        FOR UPDATE
    `
	wd, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock withdrawal request", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int, status string, page, limit int) ([]domain.WithdrawalRequest, int, error) {
	var total int
	countQuery := `
        SELECT count(*)
        FROM withdrawal_requests
        WHERE user_id = $1 AND ($2 = '' OR status = $2)
    `
	if err := r.db.QueryRow(ctx, countQuery, userID, status).Scan(&total); err != nil {
		zap.L().Error("can't count withdrawal requests", zap.Error(err))
		return nil, 0, err
	}

	query := `
        SELECT ` + withdrawalColumns + `
        FROM withdrawal_requests
        WHERE user_id = $1 AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, userID, status, limit, (page-1)*limit)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var withdrawals []domain.WithdrawalRequest
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal row", zap.Error(err))
			return nil, 0, err
		}
		withdrawals = append(withdrawals, *wd)
	}
	return withdrawals, total, nil
}

func (r *Repository) Update(ctx context.Context, withdrawal *domain.WithdrawalRequest) error {
	query := `
        UPDATE withdrawal_requests
        SET status = $1, rejection_reason = $2, processed_at = $3, completed_at = $4
        WHERE id = $5
    `
	_, err := r.db.Exec(ctx, query,
		withdrawal.Status, withdrawal.RejectionReason, withdrawal.ProcessedAt,
		withdrawal.CompletedAt, withdrawal.ID,
	)
	if err != nil {
		zap.L().Error("failed to update withdrawal request", zap.Error(err))
		return err
	}
	return nil
}
