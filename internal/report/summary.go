package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"chitieu/internal/core"
)

// FormatSummary renders r as the Vietnamese plain-text report.
func FormatSummary(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 BÁO CÁO CHI TIÊU THÁNG %d/%d\n\n", r.Month, r.Year)

	if r.Empty {
		b.WriteString("❌ Chưa có giao dịch nào trong tháng này.")
		return b.String()
	}

	b.WriteString("💰 TỔNG QUAN\n")
	fmt.Fprintf(&b, "├─ Tổng chi: %s\n", core.FormatVND(r.Total))
	fmt.Fprintf(&b, "├─ Số giao dịch: %d\n", r.Count)
	fmt.Fprintf(&b, "└─ Trung bình: %s/giao dịch\n\n", core.FormatVND(math.Round(r.Average)))

	b.WriteString("📁 THEO DANH MỤC\n")
	for _, c := range r.ByCategory {
		fmt.Fprintf(&b, "├─ %s: %s (%s%%)\n", c.Category, core.FormatVND(c.Total), formatPercent(c.Percentage))
	}

	b.WriteString("\n🏆 TOP 5 CHI TIÊU LỚN NHẤT\n")
	for i, t := range r.TopTransactions {
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n", i+1, t.Description, core.FormatVND(t.Amount), core.FormatViDate(t.TransactionDate))
	}

	b.WriteString("\n📈 SO VỚI THÁNG TRƯỚC\n")
	if r.PreviousTotal > 0 {
		sign := ""
		if r.ChangePercent > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "└─ %s%s%% (%s vs %s)\n", sign, formatPercent(r.ChangePercent),
			core.FormatVND(r.Total), core.FormatVND(r.PreviousTotal))
	} else {
		b.WriteString("└─ Không có dữ liệu tháng trước để so sánh\n")
	}

	b.WriteString("\n📊 XU HƯỚNG 4 TUẦN GẦN ĐÂY")
	for _, w := range r.WeeklyTrend {
		fmt.Fprintf(&b, "\n%s: %s", w.Week, core.FormatVND(w.Total))
	}
	return b.String()
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
