package loanservice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lending policy. Values mirror the mobile client's configuration; the
// server-side figures are authoritative.
const (
	InterestRate      = 2.8
	PenaltyRatePerDay = 1.0
	MinLoanAmount     = int64(10000)
	MaxLoanAmount     = int64(5000000)
)

// LoanTerms are the offered term lengths in days.
var LoanTerms = []int{7, 14, 21, 30}

var hundred = decimal.NewFromInt(100)

// Calculation is the fixed outcome of loan origination. Interest is simple,
// computed once and never recalculated.
type Calculation struct {
	PrincipalAmount int64
	InterestRate    float64
	TermDays        int
	TotalInterest   int64
	TotalAmount     int64
	DueDate         time.Time
}

// Calculate derives interest, total and due date from the principal and term.
// totalInterest = round(principal * rate / 100), rounded half up to a whole
// tugrik, matching the client-side preview formula.
func Calculate(principal int64, termDays int, rate float64, now time.Time) Calculation {
	interest := decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(rate)).
		Div(hundred).
		Round(0).
		IntPart()

	return Calculation{
		PrincipalAmount: principal,
		InterestRate:    rate,
		TermDays:        termDays,
		TotalInterest:   interest,
		TotalAmount:     principal + interest,
		DueDate:         now.AddDate(0, 0, termDays),
	}
}

// OverdueDays is the number of full days past the due date; zero when the
// loan is not yet due.
func OverdueDays(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}

// Penalty is recomputed from overdueDays each time, never incremented, so
// repeated overdue checks stay idempotent. Simple daily rate on the
// remaining amount, non-compounding.
func Penalty(remaining int64, overdueDays int) int64 {
	if overdueDays <= 0 || remaining <= 0 {
		return 0
	}
	return decimal.NewFromInt(remaining).
		Mul(decimal.NewFromFloat(PenaltyRatePerDay)).
		Div(hundred).
		Mul(decimal.NewFromInt(int64(overdueDays))).
		Round(0).
		IntPart()
}

func validTerm(termDays int) bool {
	for _, t := range LoanTerms {
		if t == termDays {
			return true
		}
	}
	return false
}
