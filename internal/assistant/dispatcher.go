package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/finance"
	"github.com/andresuchitra/duitku/internal/store"
)

// ResponseNotRecognized is returned when the model selects a function
// outside the catalog.
const ResponseNotRecognized = "Maaf, saya tidak mengenali perintah itu. Coba jelaskan lagi, misalnya: 'Catat pengeluaran makan 50 ribu'."

// Result is the dispatcher's answer to one user message.
type Result struct {
	Response string        `json:"response"`
	Executed bool          `json:"executed"`
	Action   *ActionResult `json:"action,omitempty"`
}

// ActionResult describes the catalog action that was carried out.
type ActionResult struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

// Dispatcher turns one free-text instruction into at most one persisted
// side effect, or a conversational answer. It performs no retries and
// keeps no state between calls.
type Dispatcher struct {
	classifier Classifier
	store      store.Store
	log        zerolog.Logger

	// now is swappable so tests can pin the default dates.
	now func() time.Time
}

// NewDispatcher wires a classifier and a store into a dispatcher.
func NewDispatcher(classifier Classifier, st store.Store, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		classifier: classifier,
		store:      st,
		log:        log,
		now:        time.Now,
	}
}

// Dispatch classifies the message and executes the selected action for the
// given user. A persistence or classification error aborts the whole
// request; the caller translates it into the failure envelope. Submitting
// the same message twice yields two records: there is deliberately no
// duplicate-submission guard.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, message string, history []Message) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("dispatch: user id is required")
	}

	cls, err := d.classifier.Classify(ctx, message, history)
	if err != nil {
		return nil, fmt.Errorf("dispatch: classify: %w", err)
	}

	if cls.Call == nil {
		// Conversational intent: pass the model's reply through unmodified.
		return &Result{Response: cls.Text, Executed: false}, nil
	}

	if !KnownAction(cls.Call.Name) {
		d.log.Warn().Str("function", cls.Call.Name).Msg("Model selected unknown action")
		return &Result{Response: ResponseNotRecognized, Executed: false}, nil
	}

	d.log.Info().
		Str("user_id", userID).
		Str("action", cls.Call.Name).
		Msg("Executing assistant action")

	switch ActionName(cls.Call.Name) {
	case ActionAddBudgetTransaction:
		return d.addBudgetTransaction(ctx, userID, cls.Call.Args)
	case ActionAddInvestment:
		return d.addInvestment(ctx, userID, cls.Call.Args)
	case ActionAddCryptoHolding:
		return d.addCryptoHolding(ctx, userID, cls.Call.Args)
	case ActionAddFinancialGoal:
		return d.addFinancialGoal(ctx, userID, cls.Call.Args)
	case ActionAddBusinessTransaction:
		return d.addBusinessTransaction(ctx, userID, cls.Call.Args)
	case ActionAddDebt:
		return d.addDebt(ctx, userID, cls.Call.Args)
	case ActionAddRecurringTransaction:
		return d.addRecurringTransaction(ctx, userID, cls.Call.Args)
	case ActionGetFinancialSummary:
		return d.financialSummary(ctx, userID)
	}
	return &Result{Response: ResponseNotRecognized, Executed: false}, nil
}

func (d *Dispatcher) addBudgetTransaction(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	tx, err := parseBudgetTransaction(args, d.now())
	if err != nil {
		return nil, fmt.Errorf("add_budget_transaction: %w", err)
	}
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = d.now()

	if err := d.store.InsertBudgetTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("add_budget_transaction: insert: %w", err)
	}

	label := "pengeluaran"
	if tx.Type == domain.TransactionIncome {
		label = "pemasukan"
	}
	return executed(ActionAddBudgetTransaction, tx, fmt.Sprintf(
		"Berhasil mencatat %s sebesar %s untuk kategori %s.",
		label, FormatIDR(tx.Amount), tx.Category,
	)), nil
}

func (d *Dispatcher) addInvestment(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	inv, err := parseInvestment(args, d.now())
	if err != nil {
		return nil, fmt.Errorf("add_investment: %w", err)
	}
	inv.ID = uuid.New().String()
	inv.UserID = userID
	inv.CreatedAt = d.now()

	if err := d.store.InsertInvestment(ctx, inv); err != nil {
		return nil, fmt.Errorf("add_investment: insert: %w", err)
	}

	return executed(ActionAddInvestment, inv, fmt.Sprintf(
		"Investasi %s sebesar %s sudah dicatat.",
		inv.Name, FormatIDR(inv.Amount),
	)), nil
}

func (d *Dispatcher) addCryptoHolding(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	h, err := parseCryptoHolding(args, d.now())
	if err != nil {
		return nil, fmt.Errorf("add_crypto_holding: %w", err)
	}
	h.ID = uuid.New().String()
	h.UserID = userID
	h.CreatedAt = d.now()

	if err := d.store.InsertCryptoHolding(ctx, h); err != nil {
		return nil, fmt.Errorf("add_crypto_holding: insert: %w", err)
	}

	return executed(ActionAddCryptoHolding, h, fmt.Sprintf(
		"Pembelian %v %s di harga %s per koin sudah dicatat.",
		h.Amount, h.Symbol, FormatIDR(h.PurchasePrice),
	)), nil
}

func (d *Dispatcher) addFinancialGoal(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	g, err := parseFinancialGoal(args)
	if err != nil {
		return nil, fmt.Errorf("add_financial_goal: %w", err)
	}
	g.ID = uuid.New().String()
	g.UserID = userID
	g.CreatedAt = d.now()

	if err := d.store.InsertFinancialGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("add_financial_goal: insert: %w", err)
	}

	return executed(ActionAddFinancialGoal, g, fmt.Sprintf(
		"Target keuangan %q dengan nominal %s sudah dibuat.",
		g.Name, FormatIDR(g.TargetAmount),
	)), nil
}

func (d *Dispatcher) addBusinessTransaction(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	tx, err := parseBusinessTransaction(args, d.now())
	if err != nil {
		return nil, fmt.Errorf("add_business_transaction: %w", err)
	}
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = d.now()

	if err := d.store.InsertBusinessTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("add_business_transaction: insert: %w", err)
	}

	return executed(ActionAddBusinessTransaction, tx, fmt.Sprintf(
		"Transaksi %s sebesar %s untuk usaha %s sudah dicatat.",
		tx.Type, FormatIDR(tx.Amount), tx.BusinessName,
	)), nil
}

func (d *Dispatcher) addDebt(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	debt, err := parseDebt(args)
	if err != nil {
		return nil, fmt.Errorf("add_debt: %w", err)
	}
	debt.ID = uuid.New().String()
	debt.UserID = userID
	debt.CreatedAt = d.now()

	if err := d.store.InsertDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("add_debt: insert: %w", err)
	}

	return executed(ActionAddDebt, debt, fmt.Sprintf(
		"Hutang %s kepada %s sebesar %s sudah dicatat.",
		debt.Name, debt.Creditor, FormatIDR(debt.TotalAmount),
	)), nil
}

func (d *Dispatcher) addRecurringTransaction(ctx context.Context, userID string, args map[string]any) (*Result, error) {
	tx, err := parseRecurringTransaction(args, d.now())
	if err != nil {
		return nil, fmt.Errorf("add_recurring_transaction: %w", err)
	}
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = d.now()

	if err := d.store.InsertRecurringTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("add_recurring_transaction: insert: %w", err)
	}

	return executed(ActionAddRecurringTransaction, tx, fmt.Sprintf(
		"Transaksi rutin %s (%s) sebesar %s sudah dicatat.",
		tx.Name, tx.Frequency, FormatIDR(tx.Amount),
	)), nil
}

// financialSummary is the one read-only catalog action. It aggregates the
// user's records and writes nothing.
func (d *Dispatcher) financialSummary(ctx context.Context, userID string) (*Result, error) {
	budget, err := d.store.ListBudgetTransactions(ctx, userID, store.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("get_financial_summary: budget transactions: %w", err)
	}
	investments, err := d.store.ListInvestments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_financial_summary: investments: %w", err)
	}
	holdings, err := d.store.ListCryptoHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_financial_summary: crypto holdings: %w", err)
	}
	debts, err := d.store.ListDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_financial_summary: debts: %w", err)
	}

	totals := finance.Aggregate(budget, investments, holdings, debts)
	score := finance.HealthScore(totals)

	narrative := fmt.Sprintf(
		"Ringkasan keuangan kamu:\n"+
			"- Total pemasukan: %s\n"+
			"- Total pengeluaran: %s\n"+
			"- Nilai investasi: %s\n"+
			"- Nilai kripto: %s\n"+
			"- Sisa hutang: %s\n"+
			"- Kekayaan bersih: %s\n"+
			"- Skor kesehatan keuangan: %d/100",
		FormatIDR(totals.Income),
		FormatIDR(totals.Expenses),
		FormatIDR(totals.InvestmentValue),
		FormatIDR(totals.CryptoValue),
		FormatIDR(totals.TotalDebt),
		FormatIDR(totals.NetWorth()),
		score,
	)

	return &Result{
		Response: narrative,
		Executed: true,
		Action: &ActionResult{
			Action:  string(ActionGetFinancialSummary),
			Success: true,
			Data: map[string]any{
				"totals":       totals,
				"net_worth":    totals.NetWorth(),
				"health_score": score,
			},
		},
	}, nil
}

func executed(action ActionName, data any, response string) *Result {
	return &Result{
		Response: response,
		Executed: true,
		Action: &ActionResult{
			Action:  string(action),
			Success: true,
			Data:    data,
		},
	}
}
