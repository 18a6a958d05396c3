package core

// CategoryBreakdown is the share of one category in a month.
type CategoryBreakdown struct {
	Category   Category `json:"category"`
	Total      float64  `json:"total"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"` // of the month total, 1 decimal
}

// MonthlyStats is the aggregate of every transaction in one calendar month.
type MonthlyStats struct {
	Total           float64             `json:"total"`
	Count           int                 `json:"count"`
	Average         float64             `json:"average"`
	ByCategory      []CategoryBreakdown `json:"byCategory"`
	TopTransactions []Transaction       `json:"topTransactions"`
}

// WeekTotal is one bucket of the rolling four-week trend.
type WeekTotal struct {
	Week  string  `json:"week"`
	Start Date    `json:"start"`
	End   Date    `json:"end"`
	Total float64 `json:"total"`
}
