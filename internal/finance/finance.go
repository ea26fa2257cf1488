// Package finance holds the stateless arithmetic used across the
// application: cost-of-goods (HPP), Indonesian tax estimates, the
// financial health score, net worth, and recurring-schedule math.
package finance

import (
	"time"

	"github.com/andresuchitra/duitku/internal/domain"
)

// HPP computes Harga Pokok Penjualan (cost of goods sold):
// beginning inventory plus purchases minus ending inventory.
func HPP(beginningInventory, purchases, endingInventory float64) float64 {
	return beginningInventory + purchases - endingInventory
}

// PTKP is the annual non-taxable income for a single taxpayer (TK/0),
// in Rupiah.
const PTKP = 54_000_000

// taxBracket is one progressive PPh 21 band.
type taxBracket struct {
	upTo float64 // upper bound of the band, 0 = unbounded
	rate float64
}

var pph21Brackets = []taxBracket{
	{upTo: 60_000_000, rate: 0.05},
	{upTo: 250_000_000, rate: 0.15},
	{upTo: 500_000_000, rate: 0.25},
	{upTo: 5_000_000_000, rate: 0.30},
	{upTo: 0, rate: 0.35},
}

// EstimateAnnualTax returns the estimated annual PPh 21 for a personal
// annual income, applying the PTKP deduction and the progressive brackets.
func EstimateAnnualTax(annualIncome float64) float64 {
	taxable := annualIncome - PTKP
	if taxable <= 0 {
		return 0
	}

	var tax, lower float64
	for _, b := range pph21Brackets {
		if b.upTo == 0 || taxable <= b.upTo {
			tax += (taxable - lower) * b.rate
			break
		}
		tax += (b.upTo - lower) * b.rate
		lower = b.upTo
	}
	return tax
}

// UMKMFinalTax returns the 0.5% final tax on gross revenue available to
// small businesses (PP 55/2022).
func UMKMFinalTax(grossRevenue float64) float64 {
	if grossRevenue <= 0 {
		return 0
	}
	return grossRevenue * 0.005
}

// Totals aggregates one user's records for the summary and the health
// score. CryptoValue is units times purchase price; live market valuation
// belongs to the callers that have a price feed.
type Totals struct {
	Income          float64 `json:"income"`
	Expenses        float64 `json:"expenses"`
	InvestmentValue float64 `json:"investment_value"`
	CryptoValue     float64 `json:"crypto_value"`
	TotalDebt       float64 `json:"total_debt"`
}

// NetWorth is income minus expenses plus investment and crypto valuations
// minus outstanding debt.
func (t Totals) NetWorth() float64 {
	return t.Income - t.Expenses + t.InvestmentValue + t.CryptoValue - t.TotalDebt
}

// Aggregate folds raw records into Totals.
func Aggregate(
	budget []*domain.BudgetTransaction,
	investments []*domain.Investment,
	holdings []*domain.CryptoHolding,
	debts []*domain.Debt,
) Totals {
	var t Totals
	for _, tx := range budget {
		switch tx.Type {
		case domain.TransactionIncome:
			t.Income += tx.Amount
		case domain.TransactionExpense:
			t.Expenses += tx.Amount
		}
	}
	for _, inv := range investments {
		t.InvestmentValue += inv.CurrentValue
	}
	for _, h := range holdings {
		t.CryptoValue += h.Amount * h.PurchasePrice
	}
	for _, d := range debts {
		t.TotalDebt += d.RemainingAmount
	}
	return t
}

// HealthScore grades the user's finances from 0 to 100. Half the score
// comes from the savings rate (30% or better earns full marks), half from
// the debt load relative to annual income (debt at or above one year of
// income scores zero).
func HealthScore(t Totals) int {
	if t.Income <= 0 {
		if t.TotalDebt > 0 || t.Expenses > 0 {
			return 0
		}
		return 50
	}

	savingsRate := (t.Income - t.Expenses) / t.Income
	savingsScore := savingsRate / 0.30 * 50
	if savingsScore > 50 {
		savingsScore = 50
	}
	if savingsScore < 0 {
		savingsScore = 0
	}

	debtRatio := t.TotalDebt / t.Income
	debtScore := (1 - debtRatio) * 50
	if debtScore > 50 {
		debtScore = 50
	}
	if debtScore < 0 {
		debtScore = 0
	}

	return int(savingsScore + debtScore)
}

// NextDueDate advances a recurring schedule date by one period. The
// schedule is static metadata; callers decide when to advance it.
func NextDueDate(freq domain.Frequency, from time.Time) time.Time {
	switch freq {
	case domain.FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case domain.FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case domain.FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case domain.FrequencyYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}
