package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/andresuchitra/duitku/internal/domain"
)

// Row types mirror the table schemas in migrations/bigquery. Money columns
// are NUMERIC and surface as *big.Rat; date columns are DATE and surface
// as civil.Date.

type transactionRow struct {
	ID              string     `bigquery:"id"`
	UserID          string     `bigquery:"user_id"`
	Type            string     `bigquery:"type"`
	Amount          *big.Rat   `bigquery:"amount"`
	Category        string     `bigquery:"category"`
	Description     string     `bigquery:"description"`
	TransactionDate civil.Date `bigquery:"transaction_date"`
	CreatedTS       time.Time  `bigquery:"created_ts"`
}

type investmentRow struct {
	ID           string     `bigquery:"id"`
	UserID       string     `bigquery:"user_id"`
	Name         string     `bigquery:"name"`
	Type         string     `bigquery:"type"`
	Amount       *big.Rat   `bigquery:"amount"`
	CurrentValue *big.Rat   `bigquery:"current_value"`
	PurchaseDate civil.Date `bigquery:"purchase_date"`
	CreatedTS    time.Time  `bigquery:"created_ts"`
}

type cryptoHoldingRow struct {
	ID            string     `bigquery:"id"`
	UserID        string     `bigquery:"user_id"`
	CoinID        string     `bigquery:"coin_id"`
	CoinName      string     `bigquery:"coin_name"`
	Symbol        string     `bigquery:"symbol"`
	Amount        float64    `bigquery:"amount"`
	PurchasePrice *big.Rat   `bigquery:"purchase_price"`
	PurchaseDate  civil.Date `bigquery:"purchase_date"`
	CreatedTS     time.Time  `bigquery:"created_ts"`
}

type financialGoalRow struct {
	ID            string            `bigquery:"id"`
	UserID        string            `bigquery:"user_id"`
	Name          string            `bigquery:"name"`
	TargetAmount  *big.Rat          `bigquery:"target_amount"`
	CurrentAmount *big.Rat          `bigquery:"current_amount"`
	Category      string            `bigquery:"category"`
	Priority      string            `bigquery:"priority"`
	Deadline      bigquery.NullDate `bigquery:"deadline"`
	CreatedTS     time.Time         `bigquery:"created_ts"`
}

type businessTransactionRow struct {
	ID              string     `bigquery:"id"`
	UserID          string     `bigquery:"user_id"`
	BusinessName    string     `bigquery:"business_name"`
	Type            string     `bigquery:"type"`
	Category        string     `bigquery:"category"`
	Amount          *big.Rat   `bigquery:"amount"`
	Description     string     `bigquery:"description"`
	TransactionDate civil.Date `bigquery:"transaction_date"`
	CreatedTS       time.Time  `bigquery:"created_ts"`
}

type debtRow struct {
	ID              string               `bigquery:"id"`
	UserID          string               `bigquery:"user_id"`
	Name            string               `bigquery:"name"`
	Creditor        string               `bigquery:"creditor"`
	TotalAmount     *big.Rat             `bigquery:"total_amount"`
	RemainingAmount *big.Rat             `bigquery:"remaining_amount"`
	InterestRate    bigquery.NullFloat64 `bigquery:"interest_rate"`
	MinimumPayment  *big.Rat             `bigquery:"minimum_payment"`
	DueDate         bigquery.NullDate    `bigquery:"due_date"`
	CreatedTS       time.Time            `bigquery:"created_ts"`
}

type recurringTransactionRow struct {
	ID          string     `bigquery:"id"`
	UserID      string     `bigquery:"user_id"`
	Name        string     `bigquery:"name"`
	Type        string     `bigquery:"type"`
	Amount      *big.Rat   `bigquery:"amount"`
	Category    string     `bigquery:"category"`
	Frequency   string     `bigquery:"frequency"`
	NextDueDate civil.Date `bigquery:"next_due_date"`
	CreatedTS   time.Time  `bigquery:"created_ts"`
}

func ratFromFloat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

func floatFromRat(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

func civilFromTime(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

func timeFromCivil(d civil.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func transactionToRow(tx *domain.BudgetTransaction) *transactionRow {
	return &transactionRow{
		ID:              tx.ID,
		UserID:          tx.UserID,
		Type:            string(tx.Type),
		Amount:          ratFromFloat(tx.Amount),
		Category:        tx.Category,
		Description:     tx.Description,
		TransactionDate: civilFromTime(tx.TransactionDate),
		CreatedTS:       tx.CreatedAt.UTC(),
	}
}

func rowToTransaction(row *transactionRow) *domain.BudgetTransaction {
	return &domain.BudgetTransaction{
		ID:              row.ID,
		UserID:          row.UserID,
		Type:            domain.TransactionType(row.Type),
		Amount:          floatFromRat(row.Amount),
		Category:        row.Category,
		Description:     row.Description,
		TransactionDate: timeFromCivil(row.TransactionDate),
		CreatedAt:       row.CreatedTS,
	}
}

func investmentToRow(inv *domain.Investment) *investmentRow {
	return &investmentRow{
		ID:           inv.ID,
		UserID:       inv.UserID,
		Name:         inv.Name,
		Type:         string(inv.Type),
		Amount:       ratFromFloat(inv.Amount),
		CurrentValue: ratFromFloat(inv.CurrentValue),
		PurchaseDate: civilFromTime(inv.PurchaseDate),
		CreatedTS:    inv.CreatedAt.UTC(),
	}
}

func rowToInvestment(row *investmentRow) *domain.Investment {
	return &domain.Investment{
		ID:           row.ID,
		UserID:       row.UserID,
		Name:         row.Name,
		Type:         domain.InvestmentType(row.Type),
		Amount:       floatFromRat(row.Amount),
		CurrentValue: floatFromRat(row.CurrentValue),
		PurchaseDate: timeFromCivil(row.PurchaseDate),
		CreatedAt:    row.CreatedTS,
	}
}

func cryptoHoldingToRow(h *domain.CryptoHolding) *cryptoHoldingRow {
	return &cryptoHoldingRow{
		ID:            h.ID,
		UserID:        h.UserID,
		CoinID:        h.CoinID,
		CoinName:      h.CoinName,
		Symbol:        h.Symbol,
		Amount:        h.Amount,
		PurchasePrice: ratFromFloat(h.PurchasePrice),
		PurchaseDate:  civilFromTime(h.PurchaseDate),
		CreatedTS:     h.CreatedAt.UTC(),
	}
}

func rowToCryptoHolding(row *cryptoHoldingRow) *domain.CryptoHolding {
	return &domain.CryptoHolding{
		ID:            row.ID,
		UserID:        row.UserID,
		CoinID:        row.CoinID,
		CoinName:      row.CoinName,
		Symbol:        row.Symbol,
		Amount:        row.Amount,
		PurchasePrice: floatFromRat(row.PurchasePrice),
		PurchaseDate:  timeFromCivil(row.PurchaseDate),
		CreatedAt:     row.CreatedTS,
	}
}

func financialGoalToRow(g *domain.FinancialGoal) *financialGoalRow {
	row := &financialGoalRow{
		ID:            g.ID,
		UserID:        g.UserID,
		Name:          g.Name,
		TargetAmount:  ratFromFloat(g.TargetAmount),
		CurrentAmount: ratFromFloat(g.CurrentAmount),
		Category:      g.Category,
		Priority:      string(g.Priority),
		CreatedTS:     g.CreatedAt.UTC(),
	}
	if g.Deadline != nil {
		row.Deadline = bigquery.NullDate{Date: civilFromTime(*g.Deadline), Valid: true}
	}
	return row
}

func rowToFinancialGoal(row *financialGoalRow) *domain.FinancialGoal {
	g := &domain.FinancialGoal{
		ID:            row.ID,
		UserID:        row.UserID,
		Name:          row.Name,
		TargetAmount:  floatFromRat(row.TargetAmount),
		CurrentAmount: floatFromRat(row.CurrentAmount),
		Category:      row.Category,
		Priority:      domain.GoalPriority(row.Priority),
		CreatedAt:     row.CreatedTS,
	}
	if row.Deadline.Valid {
		d := timeFromCivil(row.Deadline.Date)
		g.Deadline = &d
	}
	return g
}

func businessTransactionToRow(tx *domain.BusinessTransaction) *businessTransactionRow {
	return &businessTransactionRow{
		ID:              tx.ID,
		UserID:          tx.UserID,
		BusinessName:    tx.BusinessName,
		Type:            string(tx.Type),
		Category:        tx.Category,
		Amount:          ratFromFloat(tx.Amount),
		Description:     tx.Description,
		TransactionDate: civilFromTime(tx.TransactionDate),
		CreatedTS:       tx.CreatedAt.UTC(),
	}
}

func rowToBusinessTransaction(row *businessTransactionRow) *domain.BusinessTransaction {
	return &domain.BusinessTransaction{
		ID:              row.ID,
		UserID:          row.UserID,
		BusinessName:    row.BusinessName,
		Type:            domain.BusinessTransactionType(row.Type),
		Category:        row.Category,
		Amount:          floatFromRat(row.Amount),
		Description:     row.Description,
		TransactionDate: timeFromCivil(row.TransactionDate),
		CreatedAt:       row.CreatedTS,
	}
}

func debtToRow(d *domain.Debt) *debtRow {
	row := &debtRow{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.Name,
		Creditor:        d.Creditor,
		TotalAmount:     ratFromFloat(d.TotalAmount),
		RemainingAmount: ratFromFloat(d.RemainingAmount),
		CreatedTS:       d.CreatedAt.UTC(),
	}
	if d.InterestRate != nil {
		row.InterestRate = bigquery.NullFloat64{Float64: *d.InterestRate, Valid: true}
	}
	if d.MinimumPayment != nil {
		row.MinimumPayment = ratFromFloat(*d.MinimumPayment)
	}
	if d.DueDate != nil {
		row.DueDate = bigquery.NullDate{Date: civilFromTime(*d.DueDate), Valid: true}
	}
	return row
}

func rowToDebt(row *debtRow) *domain.Debt {
	d := &domain.Debt{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		Creditor:        row.Creditor,
		TotalAmount:     floatFromRat(row.TotalAmount),
		RemainingAmount: floatFromRat(row.RemainingAmount),
		CreatedAt:       row.CreatedTS,
	}
	if row.InterestRate.Valid {
		rate := row.InterestRate.Float64
		d.InterestRate = &rate
	}
	if row.MinimumPayment != nil {
		payment := floatFromRat(row.MinimumPayment)
		d.MinimumPayment = &payment
	}
	if row.DueDate.Valid {
		due := timeFromCivil(row.DueDate.Date)
		d.DueDate = &due
	}
	return d
}

func recurringTransactionToRow(tx *domain.RecurringTransaction) *recurringTransactionRow {
	return &recurringTransactionRow{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Name:        tx.Name,
		Type:        string(tx.Type),
		Amount:      ratFromFloat(tx.Amount),
		Category:    tx.Category,
		Frequency:   string(tx.Frequency),
		NextDueDate: civilFromTime(tx.NextDueDate),
		CreatedTS:   tx.CreatedAt.UTC(),
	}
}

func rowToRecurringTransaction(row *recurringTransactionRow) *domain.RecurringTransaction {
	return &domain.RecurringTransaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Name:        row.Name,
		Type:        domain.TransactionType(row.Type),
		Amount:      floatFromRat(row.Amount),
		Category:    row.Category,
		Frequency:   domain.Frequency(row.Frequency),
		NextDueDate: timeFromCivil(row.NextDueDate),
		CreatedAt:   row.CreatedTS,
	}
}
