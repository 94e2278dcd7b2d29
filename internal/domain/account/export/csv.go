package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format controls how a column value is rendered
type Format int

const (
	FormatText Format = iota
	FormatInteger
	FormatDecimal
	FormatCurrency
	FormatPercent
)

// Column describes one CSV column over rows of type T
type Column[T any] struct {
	Header string
	Format Format
	Value  func(T) any
}

// ToCSV renders a header row and one row per item. Every field is double-quoted
// and embedded quotes are doubled.
func ToCSV[T any](rows []T, columns []Column[T]) string {
	var b strings.Builder

	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(&b, c.Header)
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i, c := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(&b, render(c.Value(row), c.Format))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Filename returns the download name for a report generated at now
func Filename(report string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", report, now.Format("2006-01-02"))
}

func writeQuoted(b *strings.Builder, field string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(field, `"`, `""`))
	b.WriteByte('"')
}

func render(v any, format Format) string {
	switch format {
	case FormatCurrency:
		return toDecimal(v).StringFixed(2)
	case FormatPercent:
		return toDecimal(v).StringFixed(2)
	case FormatInteger:
		return toDecimal(v).Round(0).String()
	case FormatDecimal:
		return toDecimal(v).String()
	}

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func toDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case decimal.Decimal:
		return t
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(t)
	case string:
		if d, err := decimal.NewFromString(t); err == nil {
			return d
		}
	}
	if f, err := strconv.ParseFloat(fmt.Sprint(v), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}
