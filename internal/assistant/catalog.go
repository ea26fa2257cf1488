package assistant

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/andresuchitra/duitku/internal/domain"
)

// ActionName identifies one entry of the closed action catalog.
type ActionName string

const (
	ActionAddBudgetTransaction   ActionName = "add_budget_transaction"
	ActionAddInvestment          ActionName = "add_investment"
	ActionAddCryptoHolding       ActionName = "add_crypto_holding"
	ActionAddFinancialGoal       ActionName = "add_financial_goal"
	ActionAddBusinessTransaction ActionName = "add_business_transaction"
	ActionAddDebt                ActionName = "add_debt"
	ActionAddRecurringTransaction ActionName = "add_recurring_transaction"
	ActionGetFinancialSummary    ActionName = "get_financial_summary"
)

const dateLayout = "2006-01-02"

// Declarations returns the catalog as Gemini function declarations. The
// model picks at most one of these per message and extracts the arguments.
func Declarations() []*genai.FunctionDeclaration {
	transactionType := &genai.Schema{
		Type:        genai.TypeString,
		Enum:        []string{"income", "expense"},
		Description: "Whether money came in (income) or went out (expense).",
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        string(ActionAddBudgetTransaction),
			Description: "Record a personal income or expense in the budget.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"transaction_type": transactionType,
					"amount": {
						Type:        genai.TypeNumber,
						Description: "Amount in Rupiah. Expand magnitude words: 'juta' is millions, 'ribu' is thousands.",
					},
					"category": {
						Type:        genai.TypeString,
						Description: "Short category label, e.g. Gaji, Makanan, Transportasi.",
					},
					"description": {
						Type:        genai.TypeString,
						Description: "Free-text description of the transaction.",
					},
				},
				Required: []string{"transaction_type", "amount", "category", "description"},
			},
		},
		{
			Name:        string(ActionAddInvestment),
			Description: "Record a new investment position.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {Type: genai.TypeString, Description: "Name of the investment."},
					"type": {
						Type: genai.TypeString,
						Enum: []string{"stocks", "bonds", "mutual_funds", "real_estate", "gold", "other"},
					},
					"amount":        {Type: genai.TypeNumber, Description: "Amount invested in Rupiah."},
					"current_value": {Type: genai.TypeNumber, Description: "Current value in Rupiah; defaults to the amount invested."},
				},
				Required: []string{"name", "type", "amount"},
			},
		},
		{
			Name:        string(ActionAddCryptoHolding),
			Description: "Record a cryptocurrency purchase.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"coin_id":   {Type: genai.TypeString, Description: "Lowercase coin identifier, e.g. bitcoin, ethereum."},
					"coin_name": {Type: genai.TypeString, Description: "Display name, e.g. Bitcoin."},
					"symbol":    {Type: genai.TypeString, Description: "Ticker symbol, e.g. BTC."},
					"amount":    {Type: genai.TypeNumber, Description: "Units purchased."},
					"purchase_price": {
						Type:        genai.TypeNumber,
						Description: "Price paid per unit in Rupiah.",
					},
				},
				Required: []string{"coin_id", "coin_name", "symbol", "amount", "purchase_price"},
			},
		},
		{
			Name:        string(ActionAddFinancialGoal),
			Description: "Create a savings goal.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":           {Type: genai.TypeString},
					"target_amount":  {Type: genai.TypeNumber, Description: "Target amount in Rupiah."},
					"current_amount": {Type: genai.TypeNumber, Description: "Amount already saved; defaults to 0."},
					"category": {
						Type: genai.TypeString,
						Enum: []string{"emergency_fund", "vacation", "education", "property", "vehicle", "retirement", "other"},
					},
					"priority": {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
					"deadline": {Type: genai.TypeString, Description: "Optional deadline, format YYYY-MM-DD."},
				},
				Required: []string{"name", "target_amount", "category", "priority"},
			},
		},
		{
			Name:        string(ActionAddBusinessTransaction),
			Description: "Record a business income or expense.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"business_name":    {Type: genai.TypeString, Description: "Name of the business the entry belongs to."},
					"transaction_type": transactionType,
					"category":         {Type: genai.TypeString},
					"amount":           {Type: genai.TypeNumber, Description: "Amount in Rupiah."},
					"description":      {Type: genai.TypeString, Description: "Optional description."},
				},
				Required: []string{"business_name", "transaction_type", "category", "amount"},
			},
		},
		{
			Name:        string(ActionAddDebt),
			Description: "Record a debt or loan.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":             {Type: genai.TypeString},
					"creditor":         {Type: genai.TypeString, Description: "Who the money is owed to."},
					"total_amount":     {Type: genai.TypeNumber, Description: "Original amount in Rupiah."},
					"remaining_amount": {Type: genai.TypeNumber, Description: "Amount still owed; defaults to the total."},
					"interest_rate":    {Type: genai.TypeNumber, Description: "Optional yearly interest rate in percent."},
					"minimum_payment":  {Type: genai.TypeNumber, Description: "Optional minimum payment in Rupiah."},
					"due_date":         {Type: genai.TypeString, Description: "Optional due date, format YYYY-MM-DD."},
				},
				Required: []string{"name", "creditor", "total_amount"},
			},
		},
		{
			Name:        string(ActionAddRecurringTransaction),
			Description: "Record a repeating income or expense, e.g. subscriptions or salary.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":             {Type: genai.TypeString},
					"transaction_type": transactionType,
					"amount":           {Type: genai.TypeNumber, Description: "Amount in Rupiah per occurrence."},
					"category":         {Type: genai.TypeString},
					"frequency":        {Type: genai.TypeString, Enum: []string{"daily", "weekly", "monthly", "yearly"}},
					"next_due_date":    {Type: genai.TypeString, Description: "Next occurrence, format YYYY-MM-DD; defaults to today."},
				},
				Required: []string{"name", "transaction_type", "amount", "category", "frequency"},
			},
		},
		{
			Name:        string(ActionGetFinancialSummary),
			Description: "Summarize the user's finances: income, expenses, investments, crypto, debt and net worth. Read-only.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
	}
}

// KnownAction reports whether name is part of the catalog.
func KnownAction(name string) bool {
	switch ActionName(name) {
	case ActionAddBudgetTransaction, ActionAddInvestment, ActionAddCryptoHolding,
		ActionAddFinancialGoal, ActionAddBusinessTransaction, ActionAddDebt,
		ActionAddRecurringTransaction, ActionGetFinancialSummary:
		return true
	}
	return false
}

// The parse functions below turn the model's emitted arguments into domain
// records. They enforce required fields and enum membership but put no
// bound on magnitudes: colloquial amount expansion ("10 juta") is the
// model's job and oversized values are accepted as-is.

func parseBudgetTransaction(args map[string]any, now time.Time) (*domain.BudgetTransaction, error) {
	txType, err := argString(args, "transaction_type")
	if err != nil {
		return nil, err
	}
	amount, err := argNumber(args, "amount")
	if err != nil {
		return nil, err
	}
	category, err := argString(args, "category")
	if err != nil {
		return nil, err
	}
	tx := &domain.BudgetTransaction{
		Type:            domain.TransactionType(txType),
		Amount:          amount,
		Category:        category,
		Description:     optString(args, "description"),
		TransactionDate: dateOrDefault(args, "date", now),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

func parseInvestment(args map[string]any, now time.Time) (*domain.Investment, error) {
	name, err := argString(args, "name")
	if err != nil {
		return nil, err
	}
	invType, err := argString(args, "type")
	if err != nil {
		return nil, err
	}
	amount, err := argNumber(args, "amount")
	if err != nil {
		return nil, err
	}
	current := optNumber(args, "current_value", amount)
	inv := &domain.Investment{
		Name:         name,
		Type:         domain.InvestmentType(invType),
		Amount:       amount,
		CurrentValue: current,
		PurchaseDate: dateOrDefault(args, "purchase_date", now),
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func parseCryptoHolding(args map[string]any, now time.Time) (*domain.CryptoHolding, error) {
	coinID, err := argString(args, "coin_id")
	if err != nil {
		return nil, err
	}
	coinName, err := argString(args, "coin_name")
	if err != nil {
		return nil, err
	}
	symbol, err := argString(args, "symbol")
	if err != nil {
		return nil, err
	}
	amount, err := argNumber(args, "amount")
	if err != nil {
		return nil, err
	}
	price, err := argNumber(args, "purchase_price")
	if err != nil {
		return nil, err
	}
	h := &domain.CryptoHolding{
		CoinID:        strings.ToLower(coinID),
		CoinName:      coinName,
		Symbol:        strings.ToUpper(symbol),
		Amount:        amount,
		PurchasePrice: price,
		PurchaseDate:  dateOrDefault(args, "purchase_date", now),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func parseFinancialGoal(args map[string]any) (*domain.FinancialGoal, error) {
	name, err := argString(args, "name")
	if err != nil {
		return nil, err
	}
	target, err := argNumber(args, "target_amount")
	if err != nil {
		return nil, err
	}
	category, err := argString(args, "category")
	if err != nil {
		return nil, err
	}
	priority, err := argString(args, "priority")
	if err != nil {
		return nil, err
	}
	g := &domain.FinancialGoal{
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: optNumber(args, "current_amount", 0),
		Category:      category,
		Priority:      domain.GoalPriority(priority),
	}
	if deadline, ok, err := optDate(args, "deadline"); err != nil {
		return nil, err
	} else if ok {
		g.Deadline = &deadline
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseBusinessTransaction(args map[string]any, now time.Time) (*domain.BusinessTransaction, error) {
	businessName, err := argString(args, "business_name")
	if err != nil {
		return nil, err
	}
	txType, err := argString(args, "transaction_type")
	if err != nil {
		return nil, err
	}
	storedType, err := domain.BusinessTypeFor(domain.TransactionType(txType))
	if err != nil {
		return nil, err
	}
	category, err := argString(args, "category")
	if err != nil {
		return nil, err
	}
	amount, err := argNumber(args, "amount")
	if err != nil {
		return nil, err
	}
	tx := &domain.BusinessTransaction{
		BusinessName:    businessName,
		Type:            storedType,
		Category:        category,
		Amount:          amount,
		Description:     optString(args, "description"),
		TransactionDate: dateOrDefault(args, "date", now),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

func parseDebt(args map[string]any) (*domain.Debt, error) {
	name, err := argString(args, "name")
	if err != nil {
		return nil, err
	}
	creditor, err := argString(args, "creditor")
	if err != nil {
		return nil, err
	}
	total, err := argNumber(args, "total_amount")
	if err != nil {
		return nil, err
	}
	d := &domain.Debt{
		Name:            name,
		Creditor:        creditor,
		TotalAmount:     total,
		RemainingAmount: optNumber(args, "remaining_amount", total),
	}
	if v, ok := args["interest_rate"]; ok {
		if f, okf := toFloat(v); okf {
			d.InterestRate = &f
		}
	}
	if v, ok := args["minimum_payment"]; ok {
		if f, okf := toFloat(v); okf {
			d.MinimumPayment = &f
		}
	}
	if due, ok, err := optDate(args, "due_date"); err != nil {
		return nil, err
	} else if ok {
		d.DueDate = &due
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseRecurringTransaction(args map[string]any, now time.Time) (*domain.RecurringTransaction, error) {
	name, err := argString(args, "name")
	if err != nil {
		return nil, err
	}
	txType, err := argString(args, "transaction_type")
	if err != nil {
		return nil, err
	}
	amount, err := argNumber(args, "amount")
	if err != nil {
		return nil, err
	}
	category, err := argString(args, "category")
	if err != nil {
		return nil, err
	}
	freq, err := argString(args, "frequency")
	if err != nil {
		return nil, err
	}
	tx := &domain.RecurringTransaction{
		Name:        name,
		Type:        domain.TransactionType(txType),
		Amount:      amount,
		Category:    category,
		Frequency:   domain.Frequency(freq),
		NextDueDate: dateOrDefault(args, "next_due_date", now),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string, got %T", key, v)
	}
	return strings.TrimSpace(s), nil
}

func optString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func argNumber(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
	return f, nil
}

func optNumber(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key]; ok {
		if f, okf := toFloat(v); okf {
			return f
		}
	}
	return fallback
}

// toFloat accepts the numeric shapes the genai argument map can carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func dateOrDefault(args map[string]any, key string, now time.Time) time.Time {
	if s, ok := args[key].(string); ok && s != "" {
		if d, err := time.Parse(dateLayout, s); err == nil {
			return d
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func optDate(args map[string]any, key string) (time.Time, bool, error) {
	s, ok := args[key].(string)
	if !ok || s == "" {
		return time.Time{}, false, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("argument %q must be a YYYY-MM-DD date: %w", key, err)
	}
	return d, true, nil
}
