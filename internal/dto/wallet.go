package dto

import "time"

type WalletResponseDTO struct {
	Balance         int64 `json:"balance" example:"150000"`
	IsVerified      bool  `json:"is_verified" example:"true"`
	CreditLimit     int64 `json:"credit_limit" example:"500000"`
	TotalBorrowed   int64 `json:"total_borrowed" example:"100000"`
	TotalRepaid     int64 `json:"total_repaid" example:"100000"`
	AvailableCredit int64 `json:"available_credit" example:"500000"`
}

// VerifyResponseDTO carries the payment invoice when the verification fee
// could not be covered from the balance.
type VerifyResponseDTO struct {
	Wallet     WalletResponseDTO `json:"wallet"`
	Reference  string            `json:"reference,omitempty" example:"f8a6cb23-1b9f-4a58-a0c2-3d7e90b11a42"`
	PaymentURL string            `json:"payment_url,omitempty" example:"https://qpay.mn/pay/f8a6cb23"`
}

type DepositRequestDTO struct {
	Amount int64 `json:"amount" validate:"required,min=1000" example:"50000"`
}

type DepositResponseDTO struct {
	Reference  string `json:"reference" example:"f8a6cb23-1b9f-4a58-a0c2-3d7e90b11a42"`
	PaymentURL string `json:"payment_url" example:"https://qpay.mn/pay/f8a6cb23"`
	Amount     int64  `json:"amount" example:"50000"`
}

type TransactionResponseDTO struct {
	ID            int       `json:"id" example:"42"`
	Type          string    `json:"type" example:"deposit"`
	Amount        int64     `json:"amount" example:"50000"`
	BalanceBefore int64     `json:"balance_before" example:"100000"`
	BalanceAfter  int64     `json:"balance_after" example:"150000"`
	Status        string    `json:"status" example:"completed"`
	Reference     string    `json:"reference,omitempty" example:"f8a6cb23-1b9f-4a58-a0c2-3d7e90b11a42"`
	Description   string    `json:"description,omitempty" example:"deposit via QPay"`
	RelatedLoanID *int      `json:"related_loan_id,omitempty" example:"7"`
	CreatedAt     time.Time `json:"created_at" example:"2026-01-15T10:30:00+08:00"`
}

// WalletAuditDTO is the operator's conservation view. Reconciles reports
// whether balance plus the pending withdrawal hold matches the last
// completed ledger entry.
type WalletAuditDTO struct {
	Wallet        WalletResponseDTO       `json:"wallet"`
	Reserved      int64                   `json:"reserved" example:"20000"`
	LastCompleted *TransactionResponseDTO `json:"last_completed,omitempty"`
	Reconciles    bool                    `json:"reconciles" example:"true"`
}
