package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type StartPeriodRequest struct {
	BranchID string `json:"branch_id" validate:"required,max=64"`
}

// ClosePeriodRequest seals the branch's open period. End defaults to now.
// Denominations maps face value to note count; absent means nothing counted.
// PeriodID lets a retrying client name the period it already closed.
type ClosePeriodRequest struct {
	BranchID      string      `json:"branch_id"     validate:"required,max=64"`
	PeriodID      *string     `json:"period_id"     validate:"omitempty,uuid"`
	End           *time.Time  `json:"end"`
	Denominations map[int]int `json:"denominations"`
	Scope         string      `json:"scope"         validate:"omitempty,oneof=day shift"`
	Note          *string     `json:"note"          validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PeriodResponse struct {
	ID        string     `json:"id"`
	BranchID  string     `json:"branch_id"`
	StartedAt time.Time  `json:"started_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	Note      *string    `json:"note,omitempty"`
}

type BreakdownLine struct {
	Key   string          `json:"key"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ScopeBucket is one row of the day-wise or shift-wise report.
type ScopeBucket struct {
	Label string          `json:"label"`
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type DenominationLine struct {
	Face   int             `json:"face"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DayCloseSummary is the snapshot stored on a closed period.
type DayCloseSummary struct {
	PeriodID string    `json:"period_id"`
	BranchID string    `json:"branch_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Scope    string    `json:"scope"` // day | shift

	OrderCount    int64           `json:"order_count"`
	CanceledCount int64           `json:"canceled_count"`
	ComputedTotal decimal.Decimal `json:"computed_total"`
	CountedCash   decimal.Decimal `json:"counted_cash"`
	Variance      decimal.Decimal `json:"variance"`
	VariancePct   decimal.Decimal `json:"variance_pct"`
	// Classification: balanced | minor | critical
	Classification string `json:"classification"`

	Denominations   []DenominationLine `json:"denominations"`
	BySalesType     []BreakdownLine    `json:"by_sales_type"`
	ByOrderType     []BreakdownLine    `json:"by_order_type"`
	ByPaymentMethod []BreakdownLine    `json:"by_payment_method"`
	Buckets         []ScopeBucket      `json:"buckets"`
	Note            *string            `json:"note,omitempty"`
}

type ClosePeriodResponse struct {
	AlreadyClosed bool            `json:"already_closed"`
	Message       string          `json:"message"`
	Summary       DayCloseSummary `json:"summary"`
}
