package dto

import "time"

type LoanRequestDTO struct {
	Amount   int64  `json:"amount" validate:"required,min=10000,max=5000000" example:"100000"`
	TermDays int    `json:"term_days" validate:"required" example:"30"`
	Purpose  string `json:"purpose" validate:"max=200" example:"rent"`
	// TotalAmount is the figure previewed on the client; the server rejects
	// the request when its own calculation disagrees.
	TotalAmount int64 `json:"total_amount,omitempty" example:"102800"`
}

type LoanResponseDTO struct {
	ID              int        `json:"id" example:"7"`
	PrincipalAmount int64      `json:"principal_amount" example:"100000"`
	InterestRate    float64    `json:"interest_rate" example:"2.8"`
	TermDays        int        `json:"term_days" example:"30"`
	TotalInterest   int64      `json:"total_interest" example:"2800"`
	TotalAmount     int64      `json:"total_amount" example:"102800"`
	RemainingAmount int64      `json:"remaining_amount" example:"102800"`
	PenaltyAmount   int64      `json:"penalty_amount" example:"0"`
	OverdueDays     int        `json:"overdue_days" example:"0"`
	Status          string     `json:"status" example:"active"`
	Purpose         string     `json:"purpose,omitempty" example:"rent"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at" example:"2026-01-15T10:30:00+08:00"`
	DueDate         time.Time  `json:"due_date" example:"2026-02-14T10:30:00+08:00"`
	RepaidAt        *time.Time `json:"repaid_at,omitempty"`
}

type RepayResponseDTO struct {
	Loan    LoanResponseDTO `json:"loan"`
	Balance int64           `json:"balance" example:"47200"`
}

type LoanRejectRequestDTO struct {
	Reason string `json:"reason" validate:"required,max=200" example:"income not confirmed"`
}
