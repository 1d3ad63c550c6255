package domain

import "time"

type User struct {
	ID           int       `db:"id"`
	PhoneNumber  string    `db:"phone_number"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Wallet holds a user's balance and credit state. All amounts are whole
// tugrik; Balance never goes below zero.
type Wallet struct {
	ID            int   `db:"id"`
	UserID        int   `db:"user_id"`
	Balance       int64 `db:"balance"`
	IsVerified    bool  `db:"is_verified"`
	CreditLimit   int64 `db:"credit_limit"`
	TotalBorrowed int64 `db:"total_borrowed"`
	TotalRepaid   int64 `db:"total_repaid"`
	Version       int   `db:"version"`
}

// AvailableCredit is derived, never stored.
func (w *Wallet) AvailableCredit() int64 {
	return w.CreditLimit - (w.TotalBorrowed - w.TotalRepaid)
}

// WalletAudit is the operator's conservation view of one wallet: the live
// balance, the amount held by pending withdrawals, and the last completed
// ledger entry those two figures should reconcile with.
type WalletAudit struct {
	Wallet        *Wallet
	LastCompleted *Transaction
	Reserved      int64
}

type Loan struct {
	ID              int        `db:"id"`
	UserID          int        `db:"user_id"`
	PrincipalAmount int64      `db:"principal_amount"`
	InterestRate    float64    `db:"interest_rate"`
	TermDays        int        `db:"term_days"`
	TotalInterest   int64      `db:"total_interest"`
	TotalAmount     int64      `db:"total_amount"`
	RemainingAmount int64      `db:"remaining_amount"`
	PenaltyAmount   int64      `db:"penalty_amount"`
	OverdueDays     int        `db:"overdue_days"`
	Status          string     `db:"status"`
	Purpose         string     `db:"purpose"`
	RejectionReason string     `db:"rejection_reason"`
	CreatedAt       time.Time  `db:"created_at"`
	DueDate         time.Time  `db:"due_date"`
	RepaidAt        *time.Time `db:"repaid_at"`
}

// Transaction is an append-only ledger entry. BalanceBefore/BalanceAfter are
// snapshots taken at posting time and are never recomputed.
type Transaction struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	Type          string    `db:"type"`
	Amount        int64     `db:"amount"`
	BalanceBefore int64     `db:"balance_before"`
	BalanceAfter  int64     `db:"balance_after"`
	Status        string    `db:"status"`
	Reference     string    `db:"reference"`
	Description   string    `db:"description"`
	RelatedLoanID *int      `db:"related_loan_id"`
	CreatedAt     time.Time `db:"created_at"`
}

type WithdrawalRequest struct {
	ID                int        `db:"id"`
	UserID            int        `db:"user_id"`
	Amount            int64      `db:"amount"`
	BankName          string     `db:"bank_name"`
	BankAccountNumber string     `db:"bank_account_number"`
	AccountName       string     `db:"account_name"`
	Notes             string     `db:"notes"`
	Status            string     `db:"status"`
	BalanceBefore     int64      `db:"balance_before"`
	RejectionReason   string     `db:"rejection_reason"`
	TransactionID     int        `db:"transaction_id"`
	CreatedAt         time.Time  `db:"created_at"`
	ProcessedAt       *time.Time `db:"processed_at"`
	CompletedAt       *time.Time `db:"completed_at"`
}
