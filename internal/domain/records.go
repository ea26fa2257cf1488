package domain

import (
	"fmt"
	"time"
)

// TransactionType is the catalog-facing vocabulary for money direction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// BusinessTransactionType is the stored vocabulary for business records.
// Business transactions persist a localized type; the mapping from the
// catalog vocabulary happens at write time and must stay stable for the
// stored data to remain readable.
type BusinessTransactionType string

const (
	BusinessPemasukan   BusinessTransactionType = "pemasukan"
	BusinessPengeluaran BusinessTransactionType = "pengeluaran"
)

// BusinessTypeFor translates the catalog vocabulary into the stored one.
func BusinessTypeFor(t TransactionType) (BusinessTransactionType, error) {
	switch t {
	case TransactionIncome:
		return BusinessPemasukan, nil
	case TransactionExpense:
		return BusinessPengeluaran, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", t)
	}
}

// InvestmentType classifies an investment instrument.
type InvestmentType string

const (
	InvestmentStocks      InvestmentType = "stocks"
	InvestmentBonds       InvestmentType = "bonds"
	InvestmentMutualFunds InvestmentType = "mutual_funds"
	InvestmentRealEstate  InvestmentType = "real_estate"
	InvestmentGold        InvestmentType = "gold"
	InvestmentOther       InvestmentType = "other"
)

func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentStocks, InvestmentBonds, InvestmentMutualFunds,
		InvestmentRealEstate, InvestmentGold, InvestmentOther:
		return true
	}
	return false
}

// GoalPriority ranks a financial goal.
type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

func (p GoalPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Frequency describes how often a recurring transaction repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// BudgetTransaction is one income or expense entry in the personal budget.
// Immutable once created except for delete.
type BudgetTransaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Type            TransactionType `json:"type"`
	Amount          float64         `json:"amount"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate checks the fields a caller must supply before insert.
func (t *BudgetTransaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("budget transaction: invalid type %q", t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("budget transaction: amount must be positive, got %v", t.Amount)
	}
	if t.Category == "" {
		return fmt.Errorf("budget transaction: category is required")
	}
	return nil
}

// Investment is one tracked investment position. CurrentValue is supplied
// by the user or the assistant at creation, never computed here.
type Investment struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	Type         InvestmentType `json:"type"`
	Amount       float64        `json:"amount"`
	CurrentValue float64        `json:"current_value"`
	PurchaseDate time.Time      `json:"purchase_date"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (i *Investment) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("investment: name is required")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("investment: invalid type %q", i.Type)
	}
	if i.Amount <= 0 {
		return fmt.Errorf("investment: amount must be positive, got %v", i.Amount)
	}
	return nil
}

// CryptoHolding is one crypto position. Valuation against a live price is
// the caller's concern; only the purchase price is stored.
type CryptoHolding struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CoinID        string    `json:"coin_id"`
	CoinName      string    `json:"coin_name"`
	Symbol        string    `json:"symbol"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *CryptoHolding) Validate() error {
	if c.CoinID == "" {
		return fmt.Errorf("crypto holding: coin_id is required")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("crypto holding: amount must be positive, got %v", c.Amount)
	}
	if c.PurchasePrice <= 0 {
		return fmt.Errorf("crypto holding: purchase_price must be positive, got %v", c.PurchasePrice)
	}
	return nil
}

// FinancialGoal is a savings target. Progress is whatever the user reports;
// nothing recomputes CurrentAmount automatically.
type FinancialGoal struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Name          string       `json:"name"`
	TargetAmount  float64      `json:"target_amount"`
	CurrentAmount float64      `json:"current_amount"`
	Category      string       `json:"category"`
	Priority      GoalPriority `json:"priority"`
	Deadline      *time.Time   `json:"deadline,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (g *FinancialGoal) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("financial goal: name is required")
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("financial goal: target_amount must be positive, got %v", g.TargetAmount)
	}
	if !g.Priority.Valid() {
		return fmt.Errorf("financial goal: invalid priority %q", g.Priority)
	}
	return nil
}

// BusinessTransaction is the business-accounting counterpart of
// BudgetTransaction, stored in its own table with the localized type
// vocabulary.
type BusinessTransaction struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	BusinessName    string                  `json:"business_name"`
	Type            BusinessTransactionType `json:"type"`
	Category        string                  `json:"category"`
	Amount          float64                 `json:"amount"`
	Description     string                  `json:"description,omitempty"`
	TransactionDate time.Time               `json:"transaction_date"`
	CreatedAt       time.Time               `json:"created_at"`
}

func (t *BusinessTransaction) Validate() error {
	if t.BusinessName == "" {
		return fmt.Errorf("business transaction: business_name is required")
	}
	if t.Type != BusinessPemasukan && t.Type != BusinessPengeluaran {
		return fmt.Errorf("business transaction: invalid type %q", t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("business transaction: amount must be positive, got %v", t.Amount)
	}
	return nil
}

// Debt is one outstanding liability. RemainingAmount is decremented by the
// payment handler, never by the assistant.
type Debt struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Name            string     `json:"name"`
	Creditor        string     `json:"creditor"`
	TotalAmount     float64    `json:"total_amount"`
	RemainingAmount float64    `json:"remaining_amount"`
	InterestRate    *float64   `json:"interest_rate,omitempty"`
	MinimumPayment  *float64   `json:"minimum_payment,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (d *Debt) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("debt: name is required")
	}
	if d.TotalAmount <= 0 {
		return fmt.Errorf("debt: total_amount must be positive, got %v", d.TotalAmount)
	}
	if d.RemainingAmount < 0 || d.RemainingAmount > d.TotalAmount {
		return fmt.Errorf("debt: remaining_amount %v out of range for total %v", d.RemainingAmount, d.TotalAmount)
	}
	return nil
}

// RecurringTransaction is static schedule metadata. Nothing in the system
// executes it; NextDueDate is advanced by whoever records the occurrence.
type RecurringTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Frequency   Frequency       `json:"frequency"`
	NextDueDate time.Time       `json:"next_due_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (r *RecurringTransaction) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recurring transaction: name is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("recurring transaction: invalid type %q", r.Type)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("recurring transaction: amount must be positive, got %v", r.Amount)
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("recurring transaction: invalid frequency %q", r.Frequency)
	}
	return nil
}
