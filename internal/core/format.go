package core

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatAmount renders a VND amount with Vietnamese digit grouping,
// e.g. 1234567 -> "1.234.567".
func FormatAmount(amount float64) string {
	return viPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

// FormatVND is FormatAmount followed by the currency suffix.
func FormatVND(amount float64) string {
	return FormatAmount(amount) + " đ"
}

// FormatViDate renders d as day/month/year without padding.
func FormatViDate(d Date) string {
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}
