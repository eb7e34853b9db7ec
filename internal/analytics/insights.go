package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

type MonthlyHealth struct {
	Income       decimal.Decimal `json:"income"`
	Spent        decimal.Decimal `json:"spent"`
	Savings      decimal.Decimal `json:"savings"`
	SavingsRate  float64         `json:"savings_rate"` // percentage
	BurnRateDays float64         `json:"burn_rate_days"`
}

type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Change     float64         `json:"change"` // vs last month, percentage
}

// Health summarizes the current calendar month: income, spend, savings and a
// burn-rate estimate (days the month's savings last at the current average
// daily spend).
func Health(txs []models.Transaction, now time.Time) MonthlyHealth {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	income := decimal.Zero
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.Date.Before(monthStart) || tx.Date.After(now) {
			continue
		}
		switch tx.Type {
		case models.TxIncome:
			income = income.Add(tx.Amount)
		case models.TxExpense:
			spent = spent.Add(tx.Amount)
		}
	}

	h := MonthlyHealth{
		Income:  income,
		Spent:   spent,
		Savings: income.Sub(spent),
	}
	if income.IsPositive() {
		rate, _ := h.Savings.Div(income).Mul(decimal.NewFromInt(100)).Float64()
		if rate < 0 {
			rate = 0
		}
		h.SavingsRate = rate
	}

	day := now.Day()
	if day > 0 && spent.IsPositive() && h.Savings.IsPositive() {
		avgDaily := spent.Div(decimal.NewFromInt(int64(day)))
		days, _ := h.Savings.Div(avgDaily).Float64()
		h.BurnRateDays = days
	}
	return h
}

// Categories breaks down the current month's expenses per category, with the
// share of total spend and the change versus the previous month. Sorted by
// amount, largest first.
func Categories(txs []models.Transaction, now time.Time) []CategoryBreakdown {
	thisStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastStart := thisStart.AddDate(0, -1, 0)

	thisMonth := make(map[string]decimal.Decimal)
	lastMonth := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, tx := range txs {
		if tx.Type != models.TxExpense {
			continue
		}
		switch {
		case !tx.Date.Before(thisStart) && !tx.Date.After(now):
			thisMonth[tx.Category] = thisMonth[tx.Category].Add(tx.Amount)
			total = total.Add(tx.Amount)
		case !tx.Date.Before(lastStart) && tx.Date.Before(thisStart):
			lastMonth[tx.Category] = lastMonth[tx.Category].Add(tx.Amount)
		}
	}

	out := make([]CategoryBreakdown, 0, len(thisMonth))
	for cat, amt := range thisMonth {
		b := CategoryBreakdown{Category: cat, Amount: amt}
		if total.IsPositive() {
			b.Percentage, _ = amt.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		if last, ok := lastMonth[cat]; ok && last.IsPositive() {
			b.Change, _ = amt.Sub(last).Div(last).Mul(decimal.NewFromInt(100)).Float64()
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}
