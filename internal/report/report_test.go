package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/core"
)

type memLister struct {
	rows []core.Transaction
	err  error
}

func (m *memLister) ListTransactions(_ context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []core.Transaction
	for _, r := range m.rows {
		if r.UserID == userID && !r.TransactionDate.Before(from.Time) && !r.TransactionDate.After(to.Time) {
			out = append(out, r)
		}
	}
	return out, nil
}

var seq int

func txn(amount float64, cat core.Category, date core.Date) core.Transaction {
	seq++
	return core.Transaction{
		ID: fmt.Sprintf("t%d", seq), UserID: "u1", Amount: amount, Category: cat,
		Description: fmt.Sprintf("chi %d", seq), TransactionDate: date,
	}
}

func TestAggregate(t *testing.T) {
	d := core.NewDate(2025, 3, 10)
	stats := Aggregate([]core.Transaction{
		txn(100, core.CategoryFood, d),
		txn(200, core.CategoryTransport, d),
		txn(300, core.CategoryFood, d),
	})
	require.NotNil(t, stats)

	assert.Equal(t, 600.0, stats.Total)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 200.0, stats.Average)
	assert.Equal(t, []core.CategoryBreakdown{
		{Category: core.CategoryFood, Total: 400, Count: 2, Percentage: 66.7},
		{Category: core.CategoryTransport, Total: 200, Count: 1, Percentage: 33.3},
	}, stats.ByCategory)

	require.Len(t, stats.TopTransactions, 3)
	assert.Equal(t, 300.0, stats.TopTransactions[0].Amount)
	assert.Equal(t, 100.0, stats.TopTransactions[2].Amount)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
}

func TestAggregate_TopFive(t *testing.T) {
	var txs []core.Transaction
	for i := 1; i <= 7; i++ {
		txs = append(txs, txn(float64(i*10), core.CategoryOther, core.NewDate(2025, 3, i)))
	}
	stats := Aggregate(txs)
	require.Len(t, stats.TopTransactions, TopN)
	assert.Equal(t, 70.0, stats.TopTransactions[0].Amount)
	assert.Equal(t, 30.0, stats.TopTransactions[4].Amount)
	// input order is preserved
	assert.Equal(t, 10.0, txs[0].Amount)
}

func TestChangePercent(t *testing.T) {
	tests := []struct {
		total, prev, want float64
	}{
		{600, 0, 0},
		{600, 400, 50},
		{300, 400, -25},
		{1000, 300, 233.3},
		{200, 300, -33.3},
		{1, 3, -66.7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChangePercent(tt.total, tt.prev), "total=%v prev=%v", tt.total, tt.prev)
	}
}

func TestService_MonthlyStats(t *testing.T) {
	store := &memLister{rows: []core.Transaction{
		txn(50, core.CategoryOther, core.NewDate(2024, 2, 29)),
		txn(100, core.CategoryFood, core.NewDate(2024, 3, 1)),
		txn(200, core.CategoryFood, core.NewDate(2024, 3, 31)),
		txn(400, core.CategoryFood, core.NewDate(2024, 4, 1)),
	}}
	svc := NewService(store, nil)

	stats, err := svc.MonthlyStats(context.Background(), "u1", 2024, 3)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 300.0, stats.Total)

	feb, err := svc.MonthlyStats(context.Background(), "u1", 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 50.0, feb.Total)

	empty, err := svc.MonthlyStats(context.Background(), "u1", 2024, 5)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestService_WeeklyTrend(t *testing.T) {
	now := time.Date(2025, 3, 29, 10, 0, 0, 0, time.UTC)
	// start = 2025-03-01
	store := &memLister{rows: []core.Transaction{
		txn(999, core.CategoryFood, core.NewDate(2025, 2, 28)),
		txn(10, core.CategoryFood, core.NewDate(2025, 3, 1)),
		txn(20, core.CategoryFood, core.NewDate(2025, 3, 7)),
		txn(30, core.CategoryFood, core.NewDate(2025, 3, 8)),
		txn(40, core.CategoryFood, core.NewDate(2025, 3, 28)),
		txn(999, core.CategoryFood, core.NewDate(2025, 3, 29)),
	}}
	svc := NewService(store, nil)

	weeks, err := svc.WeeklyTrend(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Len(t, weeks, 4)

	assert.Equal(t, "Tuần 1", weeks[0].Week)
	assert.Equal(t, "2025-03-01", weeks[0].Start.String())
	assert.Equal(t, "2025-03-07", weeks[0].End.String())
	assert.Equal(t, 30.0, weeks[0].Total)
	assert.Equal(t, 30.0, weeks[1].Total)
	assert.Equal(t, 0.0, weeks[2].Total)
	assert.Equal(t, "Tuần 4", weeks[3].Week)
	assert.Equal(t, "2025-03-28", weeks[3].End.String())
	assert.Equal(t, 40.0, weeks[3].Total)
}

func TestService_Build(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	store := &memLister{rows: []core.Transaction{
		txn(400, core.CategoryBills, core.NewDate(2025, 2, 10)),
		txn(100, core.CategoryFood, core.NewDate(2025, 3, 2)),
		txn(200, core.CategoryTransport, core.NewDate(2025, 3, 5)),
		txn(300, core.CategoryFood, core.NewDate(2025, 3, 15)),
	}}
	svc := NewService(store, nil)

	r, err := svc.Build(context.Background(), "u1", 2025, 3, now)
	require.NoError(t, err)
	assert.False(t, r.Empty)
	assert.Equal(t, 600.0, r.Total)
	assert.Equal(t, 400.0, r.PreviousTotal)
	assert.Equal(t, 50.0, r.ChangePercent)
	require.Len(t, r.WeeklyTrend, 4)

	summary := FormatSummary(r)
	assert.True(t, strings.HasPrefix(summary, "📊 BÁO CÁO CHI TIÊU THÁNG 3/2025\n\n💰 TỔNG QUAN"))
	assert.Contains(t, summary, "├─ Tổng chi: 600 đ")
	assert.Contains(t, summary, "├─ Số giao dịch: 3")
	assert.Contains(t, summary, "└─ Trung bình: 200 đ/giao dịch")
	assert.Contains(t, summary, "├─ Ẩm thực: 400 đ (66.7%)")
	assert.Contains(t, summary, "├─ Di chuyển: 200 đ (33.3%)")
	assert.Contains(t, summary, "1. chi ")
	assert.Contains(t, summary, "└─ +50% (600 đ vs 400 đ)")
	assert.Contains(t, summary, "📊 XU HƯỚNG 4 TUẦN GẦN ĐÂY\nTuần 1: ")
}

func TestService_BuildEmptyMonth(t *testing.T) {
	svc := NewService(&memLister{}, nil)

	r, err := svc.Build(context.Background(), "u1", 2025, 1, time.Now())
	require.NoError(t, err)
	assert.True(t, r.Empty)
	assert.Equal(t, 1, r.Month)
	assert.Equal(t, 2025, r.Year)
	assert.Zero(t, r.Total)
	assert.Empty(t, r.ByCategory)
	assert.NotNil(t, r.WeeklyTrend)

	assert.Equal(t, "📊 BÁO CÁO CHI TIÊU THÁNG 1/2025\n\n❌ Chưa có giao dịch nào trong tháng này.", FormatSummary(r))
}

func TestService_BuildNoPreviousMonth(t *testing.T) {
	store := &memLister{rows: []core.Transaction{txn(100, core.CategoryFood, core.NewDate(2025, 1, 3))}}
	svc := NewService(store, nil)

	r, err := svc.Build(context.Background(), "u1", 2025, 1, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, r.ChangePercent)
	assert.Contains(t, FormatSummary(r), "└─ Không có dữ liệu tháng trước để so sánh")
}

func TestService_BuildStoreError(t *testing.T) {
	boom := errors.New("db closed")
	svc := NewService(&memLister{err: boom}, nil)

	_, err := svc.Build(context.Background(), "u1", 2025, 3, time.Now())
	require.ErrorIs(t, err, boom)
}
