// Package analytics reconstructs balance history from a transaction log and
// a known anchor balance, and derives projections and period aggregations.
// It is pure: callers load the transactions once and every function here
// computes in memory, so it is callable from any front end.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// Interval selects the sampling boundary spacing for a history series.
type Interval string

const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// Options controls a History computation. Periods is the number of intervals
// to look back from Now; the series always contains Periods+1 points, the
// last one being Now itself at the anchor balance. ClampFloor floors emitted
// balances at zero; the reconstruction itself is exact and signed.
type Options struct {
	Interval   Interval
	Periods    int
	Now        time.Time
	ClampFloor bool
}

// Point is one sampled balance.
type Point struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// History reconstructs the balance series for the lookback window by walking
// the transaction list backward from the anchor balance: every transaction
// dated after a boundary has its effect inverted to obtain the balance at
// that boundary. Transfers and partition movements are balance-neutral.
func History(txs []models.Transaction, anchor decimal.Decimal, opts Options) []Point {
	raw := historyRaw(txs, anchor, opts)
	if !opts.ClampFloor {
		return raw
	}
	zero := decimal.Zero
	for i := range raw {
		if raw[i].Balance.IsNegative() {
			raw[i].Balance = zero
		}
	}
	return raw
}

func historyRaw(txs []models.Transaction, anchor decimal.Decimal, opts Options) []Point {
	boundaries := make([]time.Time, 0, opts.Periods+1)
	t := opts.Now
	for i := 0; i <= opts.Periods; i++ {
		boundaries = append(boundaries, t)
		t = stepBack(t, opts.Interval)
	}

	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	points := make([]Point, len(boundaries))
	balance := anchor
	ti := 0
	for bi, b := range boundaries {
		for ti < len(sorted) && sorted[ti].Date.After(b) {
			balance = balance.Sub(Delta(sorted[ti]))
			ti++
		}
		points[bi] = Point{Date: b, Balance: balance}
	}

	// Oldest first.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

// Delta is the signed effect of a transaction on the total balance. Income
// adds, expense subtracts; transfers and partition movements shuffle money
// between owned buckets and net to zero.
func Delta(tx models.Transaction) decimal.Decimal {
	switch tx.Type {
	case models.TxIncome:
		return tx.Amount
	case models.TxExpense:
		return tx.Amount.Neg()
	default:
		return decimal.Zero
	}
}

func stepBack(t time.Time, iv Interval) time.Time {
	switch iv {
	case IntervalHour:
		return t.Add(-time.Hour)
	case IntervalWeek:
		return t.AddDate(0, 0, -7)
	case IntervalMonth:
		return t.AddDate(0, -1, 0)
	default:
		return t.AddDate(0, 0, -1)
	}
}

// Projection extrapolates the balance forward for `months` monthly periods
// using the averaged monthly net delta of the transaction history. This is a
// constant-rate forecast, not a statistical model.
func Projection(txs []models.Transaction, anchor decimal.Decimal, months int, now time.Time, clampFloor bool) []Point {
	avg := AverageMonthlyNet(txs)
	points := make([]Point, 0, months)
	for k := 1; k <= months; k++ {
		bal := anchor.Add(avg.Mul(decimal.NewFromInt(int64(k))))
		if clampFloor && bal.IsNegative() {
			bal = decimal.Zero
		}
		points = append(points, Point{Date: now.AddDate(0, k, 0), Balance: bal})
	}
	return points
}

// AverageMonthlyNet is the mean of per-calendar-month net deltas across the
// whole transaction list. Zero when there are no income/expense transactions.
func AverageMonthlyNet(txs []models.Transaction) decimal.Decimal {
	byMonth := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		d := Delta(tx)
		if d.IsZero() {
			continue
		}
		key := tx.Date.Format("2006-01")
		byMonth[key] = byMonth[key].Add(d)
	}
	if len(byMonth) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, net := range byMonth {
		total = total.Add(net)
	}
	return total.Div(decimal.NewFromInt(int64(len(byMonth))))
}
