package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

// TrendWeeks is the number of 7-day buckets in the rolling trend.
const TrendWeeks = 4

// TransactionLister returns a user's transactions dated within [from, to].
type TransactionLister interface {
	ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error)
}

// Report is the monthly report served to clients.
type Report struct {
	Month           int                      `json:"month"`
	Year            int                      `json:"year"`
	Total           float64                  `json:"total"`
	Count           int                      `json:"count"`
	Average         float64                  `json:"average"`
	ByCategory      []core.CategoryBreakdown `json:"byCategory"`
	TopTransactions []core.Transaction       `json:"topTransactions"`
	ChangePercent   float64                  `json:"changePercent"`
	PreviousTotal   float64                  `json:"previousTotal"`
	WeeklyTrend     []core.WeekTotal         `json:"weeklyTrend"`
	Empty           bool                     `json:"-"`
}

type Service struct {
	store  TransactionLister
	logger *applog.Logger
}

func NewService(store TransactionLister, logger *applog.Logger) *Service {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Service{store: store, logger: logger.WithComponent(applog.ComponentReport)}
}

// MonthlyStats aggregates the user's transactions from the first to the last
// day of the month, both inclusive. Nil means the month has no data.
func (s *Service) MonthlyStats(ctx context.Context, userID string, year, month int) (*core.MonthlyStats, error) {
	first, last := core.MonthBounds(year, month)
	txs, err := s.store.ListTransactions(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d-%02d: %w", year, month, err)
	}
	return Aggregate(txs), nil
}

// WeeklyTrend sums the four 7-day buckets starting 28 days before now.
// Bucket i spans [start+7i, start+7i+6]; month boundaries are ignored.
func (s *Service) WeeklyTrend(ctx context.Context, userID string, now time.Time) ([]core.WeekTotal, error) {
	start := core.DateOf(now).AddDays(-7 * TrendWeeks)
	end := start.AddDays(7*TrendWeeks - 1)

	txs, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions for weekly trend: %w", err)
	}

	weeks := make([]core.WeekTotal, TrendWeeks)
	for i := range weeks {
		ws := start.AddDays(7 * i)
		weeks[i] = core.WeekTotal{
			Week:  fmt.Sprintf("Tuần %d", i+1),
			Start: ws,
			End:   ws.AddDays(6),
		}
	}
	for _, t := range txs {
		days := int(t.TransactionDate.Sub(start.Time).Hours() / 24)
		if days < 0 || days >= 7*TrendWeeks {
			continue
		}
		weeks[days/7].Total += t.Amount
	}
	return weeks, nil
}

// Build assembles the report for year/month. The current month, the previous
// month and the weekly trend are loaded concurrently.
func (s *Service) Build(ctx context.Context, userID string, year, month int, now time.Time) (Report, error) {
	var (
		current, previous *core.MonthlyStats
		trend             []core.WeekTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.MonthlyStats(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		py, pm := core.PreviousMonth(year, month)
		var err error
		previous, err = s.MonthlyStats(gctx, userID, py, pm)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = s.WeeklyTrend(gctx, userID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to build report",
			applog.FieldOperation, applog.OpReport,
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		return Report{}, err
	}

	if current == nil {
		return Report{
			Month:           month,
			Year:            year,
			ByCategory:      []core.CategoryBreakdown{},
			TopTransactions: []core.Transaction{},
			WeeklyTrend:     []core.WeekTotal{},
			Empty:           true,
		}, nil
	}

	var prevTotal float64
	if previous != nil {
		prevTotal = previous.Total
	}

	s.logger.DebugContext(ctx, "Report built",
		applog.FieldOperation, applog.OpReport,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		applog.FieldAmount, current.Total)

	return Report{
		Month:           month,
		Year:            year,
		Total:           current.Total,
		Count:           current.Count,
		Average:         current.Average,
		ByCategory:      current.ByCategory,
		TopTransactions: current.TopTransactions,
		ChangePercent:   ChangePercent(current.Total, prevTotal),
		PreviousTotal:   prevTotal,
		WeeklyTrend:     trend,
	}, nil
}
