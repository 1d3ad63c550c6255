package transactionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

const transactionColumns = `id, user_id, type, amount, balance_before, balance_after, status,
        reference, description, related_loan_id, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.BalanceBefore, &tx.BalanceAfter,
		&tx.Status, &tx.Reference, &tx.Description, &tx.RelatedLoanID, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
        INSERT INTO transactions (user_id, type, amount, balance_before, balance_after, status,
            reference, description, related_loan_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		tx.UserID, tx.Type, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		tx.Status, tx.Reference, tx.Description, tx.RelatedLoanID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE id = $1
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE reference = $1
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find transaction by reference", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int, page, limit int) ([]domain.Transaction, int, error) {
	var total int
	countQuery := `
        SELECT count(*)
        FROM transactions
        WHERE user_id = $1
    `
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		zap.L().Error("can't count transactions", zap.Error(err))
		return nil, 0, err
	}

	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		zap.L().Error("can't get transactions", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, total, nil
}

// Complete marks a pending transaction completed and writes its balance
// snapshots. For externally settled payments the posting moment is the
// confirmation, so the snapshots are taken here, not at request time.
func (r *Repository) Complete(ctx context.Context, id int, balanceBefore, balanceAfter int64) error {
	query := `
        UPDATE transactions
        SET status = 'completed', balance_before = $1, balance_after = $2
        WHERE id = $3 AND status = 'pending'
    `
	_, err := r.db.Exec(ctx, query, balanceBefore, balanceAfter, id)
	if err != nil {
		zap.L().Error("failed to complete transaction", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status string) error {
	query := `
        UPDATE transactions
        SET status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		zap.L().Error("failed to update transaction status", zap.Error(err))
		return err
	}
	return nil
}

// GetLastCompleted returns the user's most recent completed ledger entry.
// Its balance_after must match the wallet's current balance.
func (r *Repository) GetLastCompleted(ctx context.Context, userID int) (*domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE user_id = $1 AND status = 'completed'
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find last completed transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// SumPendingWithdrawals returns the amount currently held back by pending
// withdrawal entries. The wallet balance plus this hold should equal the
// last completed entry's balance_after.
func (r *Repository) SumPendingWithdrawals(ctx context.Context, userID int) (int64, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE user_id = $1 AND status = 'pending' AND type = 'withdrawal'
    `
	var sum int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		zap.L().Error("can't sum pending withdrawals", zap.Error(err))
		return 0, err
	}
	return sum, nil
}
