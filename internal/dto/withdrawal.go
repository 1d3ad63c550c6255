package dto

import "time"

type WithdrawalRequestDTO struct {
	Amount            int64  `json:"amount" validate:"required,min=10000" example:"50000"`
	BankName          string `json:"bank_name" validate:"required" example:"Khan Bank"`
	BankAccountNumber string `json:"bank_account_number" validate:"required" example:"5041234567"`
	AccountName       string `json:"account_name" validate:"required" example:"Bat-Erdene Dorj"`
	Notes             string `json:"notes" validate:"max=200" example:"salary account"`
}

type WithdrawalResponseDTO struct {
	ID                int        `json:"id" example:"3"`
	Amount            int64      `json:"amount" example:"50000"`
	BankName          string     `json:"bank_name" example:"Khan Bank"`
	BankAccountNumber string     `json:"bank_account_number" example:"5041234567"`
	AccountName       string     `json:"account_name" example:"Bat-Erdene Dorj"`
	Notes             string     `json:"notes,omitempty" example:"salary account"`
	Status            string     `json:"status" example:"pending"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at" example:"2026-01-15T10:30:00+08:00"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

type WithdrawalRejectRequestDTO struct {
	Reason string `json:"reason" validate:"required,max=200" example:"account name mismatch"`
}
