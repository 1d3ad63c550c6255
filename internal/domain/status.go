package domain

// Loan statuses. Terminal states are LoanStatusRepaid and LoanStatusCancelled.
const (
	LoanStatusPending   = "pending"
	LoanStatusActive    = "active"
	LoanStatusOverdue   = "overdue"
	LoanStatusRepaid    = "repaid"
	LoanStatusCancelled = "cancelled"
)

// Transaction types. Amounts are always positive; the type carries the sign
// convention (deposit/disbursement/refund/gateway payment credit the wallet,
// the rest debit it).
const (
	TxTypeVerificationFee  = "verification_fee"
	TxTypeGatewayPayment   = "gateway_payment"
	TxTypeDeposit          = "deposit"
	TxTypeLoanDisbursement = "loan_disbursement"
	TxTypeLoanRepayment    = "loan_repayment"
	TxTypeWithdrawal       = "withdrawal"
	TxTypeWithdrawalRefund = "withdrawal_refund"
	TxTypePenalty          = "penalty"
)

// Transaction statuses.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Withdrawal request statuses.
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCancelled = "cancelled"
)
