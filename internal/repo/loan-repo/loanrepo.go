package loanrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/internal/pg"
	"go.uber.org/zap"
)

const loanColumns = `id, user_id, principal_amount, interest_rate, term_days, total_interest,
        total_amount, remaining_amount, penalty_amount, overdue_days, status, purpose,
        rejection_reason, created_at, due_date, repaid_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var loan domain.Loan
	err := row.Scan(
		&loan.ID, &loan.UserID, &loan.PrincipalAmount, &loan.InterestRate, &loan.TermDays,
		&loan.TotalInterest, &loan.TotalAmount, &loan.RemainingAmount, &loan.PenaltyAmount,
		&loan.OverdueDays, &loan.Status, &loan.Purpose, &loan.RejectionReason,
		&loan.CreatedAt, &loan.DueDate, &loan.RepaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *Repository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
        INSERT INTO loans (user_id, principal_amount, interest_rate, term_days, total_interest,
            total_amount, remaining_amount, status, purpose, created_at, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		loan.UserID, loan.PrincipalAmount, loan.InterestRate, loan.TermDays, loan.TotalInterest,
		loan.TotalAmount, loan.RemainingAmount, loan.Status, loan.Purpose, loan.CreatedAt, loan.DueDate,
	).Scan(&loan.ID)
	if err != nil {
		zap.L().Error("can't save loan", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1
    `
	loan, err := scanLoan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

// GetByIDForUpdate locks the loan row for the rest of the transaction.
// Status transitions read through here so concurrent approvals or
// repayments serialize instead of both passing the status check.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int) (*domain.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1
        FOR UPDATE
    `
	loan, err := scanLoan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

// FindByUserID returns one page of the user's loans, newest first, with the
// total row count for pagination. Empty status means all statuses.
func (r *Repository) FindByUserID(ctx context.Context, userID int, status string, page, limit int) ([]domain.Loan, int, error) {
	var total int
	countQuery := `
        SELECT count(*)
        FROM loans
        WHERE user_id = $1 AND ($2 = '' OR status = $2)
    `
	if err := r.db.QueryRow(ctx, countQuery, userID, status).Scan(&total); err != nil {
		zap.L().Error("can't count loans", zap.Error(err))
		return nil, 0, err
	}

	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE user_id = $1 AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, userID, status, limit, (page-1)*limit)
	if err != nil {
		zap.L().Error("can't get loans", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			zap.L().Error("can't scan loan row", zap.Error(err))
			return nil, 0, err
		}
		loans = append(loans, *loan)
	}
	return loans, total, nil
}

func (r *Repository) FindActiveByUserID(ctx context.Context, userID int) ([]domain.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE user_id = $1 AND status IN ('active', 'overdue')
        ORDER BY due_date ASC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get active loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			zap.L().Error("can't scan loan row", zap.Error(err))
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, nil
}

// FindDueForCheck returns unpaid loans the overdue job must look at: active
// loans past their due date plus already-overdue ones whose penalty needs a
// daily refresh.
func (r *Repository) FindDueForCheck(ctx context.Context, limit uint32) ([]domain.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE remaining_amount > 0
          AND ((status = 'active' AND due_date < now()) OR status = 'overdue')
        ORDER BY due_date ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't get loans for overdue check", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			zap.L().Error("can't scan loan row for overdue check", zap.Error(err))
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, nil
}

func (r *Repository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
        UPDATE loans
        SET remaining_amount = $1, penalty_amount = $2, overdue_days = $3,
            status = $4, rejection_reason = $5, repaid_at = $6
        WHERE id = $7
    `
	_, err := r.db.Exec(ctx, query,
		loan.RemainingAmount, loan.PenaltyAmount, loan.OverdueDays,
		loan.Status, loan.RejectionReason, loan.RepaidAt, loan.ID,
	)
	if err != nil {
		zap.L().Error("failed to update loan", zap.Error(err))
		return err
	}
	return nil
}
