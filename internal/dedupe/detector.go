// Package dedupe finds recent transactions that look like the same expense.
package dedupe

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

const (
	// DefaultWindowDays is the look-back used by the dialogue.
	DefaultWindowDays = 1
	// MaxResults caps how many matches are returned.
	MaxResults = 5
	lowerFactor = 0.9
	upperFactor = 1.1
)

// SimilarFinder returns the user's transactions in category dated on or after
// since with amount in [minAmount, maxAmount].
type SimilarFinder interface {
	FindSimilar(ctx context.Context, userID string, category core.Category, since core.Date, minAmount, maxAmount float64) ([]core.Transaction, error)
}

type Detector struct {
	store  SimilarFinder
	now    func() time.Time
	logger *applog.Logger
}

func NewDetector(store SimilarFinder, logger *applog.Logger) *Detector {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Detector{
		store:  store,
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentDedupe),
	}
}

// WithClock replaces the clock used to compute the window start.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// FindDuplicates returns up to MaxResults transactions of the same user and
// category, dated today-windowDays or later, whose amount is within 10% of
// amount. Newest date first, then closest amount.
func (d *Detector) FindDuplicates(ctx context.Context, userID string, amount float64, category core.Category, windowDays int) ([]core.Transaction, error) {
	if windowDays < 0 {
		windowDays = 0
	}
	since := core.DateOf(d.now()).AddDays(-windowDays)
	lo, hi := amount*lowerFactor, amount*upperFactor

	rows, err := d.store.FindSimilar(ctx, userID, category, since, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("find similar transactions: %w", err)
	}

	matches := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.Amount >= lo && r.Amount <= hi {
			matches = append(matches, r)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := matches[i].TransactionDate, matches[j].TransactionDate
		if !di.Equal(dj.Time) {
			return di.After(dj.Time)
		}
		return math.Abs(matches[i].Amount-amount) < math.Abs(matches[j].Amount-amount)
	})
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}

	if len(matches) > 0 {
		d.logger.InfoContext(ctx, "Possible duplicates found",
			applog.FieldOperation, applog.OpDuplicate,
			applog.FieldUserID, userID,
			applog.FieldAmount, amount,
			applog.FieldCategory, category.String(),
			applog.FieldDuplicates, len(matches))
	}
	return matches, nil
}
