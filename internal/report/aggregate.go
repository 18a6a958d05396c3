// Package report computes monthly spending statistics and renders them.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"chitieu/internal/core"
)

// TopN is how many of the largest transactions a month keeps.
const TopN = 5

var (
	thousand = decimal.NewFromInt(1000)
	ten      = decimal.NewFromInt(10)
	half     = decimal.NewFromFloat(0.5)
)

// Aggregate summarises txs. It returns nil when txs is empty.
func Aggregate(txs []core.Transaction) *core.MonthlyStats {
	if len(txs) == 0 {
		return nil
	}

	type bucket struct {
		total float64
		count int
	}
	var (
		total float64
		order []core.Category
		byCat = make(map[core.Category]*bucket)
	)
	for _, t := range txs {
		total += t.Amount
		b, ok := byCat[t.Category]
		if !ok {
			b = &bucket{}
			byCat[t.Category] = b
			order = append(order, t.Category)
		}
		b.total += t.Amount
		b.count++
	}

	breakdown := make([]core.CategoryBreakdown, 0, len(order))
	for _, c := range order {
		b := byCat[c]
		breakdown = append(breakdown, core.CategoryBreakdown{
			Category:   c,
			Total:      b.total,
			Count:      b.count,
			Percentage: roundTenth(b.total / total),
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Total > breakdown[j].Total
	})

	top := make([]core.Transaction, len(txs))
	copy(top, txs)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Amount > top[j].Amount
	})
	if len(top) > TopN {
		top = top[:TopN]
	}

	return &core.MonthlyStats{
		Total:           total,
		Count:           len(txs),
		Average:         total / float64(len(txs)),
		ByCategory:      breakdown,
		TopTransactions: top,
	}
}

// ChangePercent is the month-over-month change in percent, one decimal.
// It is 0 when there is no previous total to compare with.
func ChangePercent(total, prevTotal float64) float64 {
	if prevTotal <= 0 {
		return 0
	}
	return roundTenth((total - prevTotal) / prevTotal)
}

// roundTenth turns a ratio into a percentage rounded half up to one decimal.
func roundTenth(ratio float64) float64 {
	return decimal.NewFromFloat(ratio).
		Mul(thousand).
		Add(half).
		Floor().
		Div(ten).
		InexactFloat64()
}
