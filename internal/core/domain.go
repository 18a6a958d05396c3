package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Category labels. The set is closed: extraction, duplicate matching and
// aggregation all key on these exact strings.
const (
	CategoryFood          Category = "Ẩm thực"
	CategoryTransport     Category = "Di chuyển"
	CategoryShopping      Category = "Mua sắm"
	CategoryEntertainment Category = "Giải trí"
	CategoryHealth        Category = "Sức khỏe"
	CategoryEducation     Category = "Học tập"
	CategoryBills         Category = "Hóa đơn"
	CategoryOther         Category = "Khác"
)

const (
	// DateLayout is the storage and wire format of a calendar date.
	DateLayout = "2006-01-02"

	// MaxDescriptionRunes bounds a description in characters, not bytes.
	MaxDescriptionRunes = 200
)

type (
	Category string

	// Date is a calendar day with no time component, always in UTC.
	Date struct {
		time.Time
	}

	// Candidate is an extracted, not yet confirmed expense.
	Candidate struct {
		Amount      float64  `json:"amount"`
		Category    Category `json:"category"`
		Description string   `json:"description"`
		Confidence  float64  `json:"confidence"`
	}

	Transaction struct {
		ID              string         `json:"id"`
		UserID          string         `json:"user_id"`
		Amount          float64        `json:"amount"`
		Category        Category       `json:"category"`
		Description     string         `json:"description"`
		TransactionDate Date           `json:"transaction_date"`
		CreatedAt       time.Time      `json:"created_at"`
		RawInput        string         `json:"raw_input"`
		AIConfidence    float64        `json:"ai_confidence"`
		Metadata        map[string]any `json:"metadata,omitempty"`
	}
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryBills,
	CategoryOther,
}

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrEmptyDescription  = errors.New("empty description")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
	ErrInvalidConfidence = errors.New("confidence out of range")
	ErrEmptyUser         = errors.New("empty user id")
	ErrEmptyID           = errors.New("empty transaction id")
	ErrZeroDate          = errors.New("date cannot be zero")
)

func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year, month int) (Date, Date) {
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// PreviousMonth returns the calendar month before year/month.
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c Candidate) Validate() error {
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !c.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := validateDescription(c.Description); err != nil {
		return err
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(string(t.Category)) == "" {
		return ErrInvalidCategory
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if t.TransactionDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func validateDescription(d string) error {
	if strings.TrimSpace(d) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(d) > MaxDescriptionRunes {
		return ErrDescriptionLength
	}
	return nil
}
