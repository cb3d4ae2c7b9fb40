package output

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as kroner with 2 decimals.
func FormatCurrency(amount decimal.Decimal) string { return amount.StringFixed(2) + " kr" }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// formatAmount renders a schedule value rounded to whole kroner, as in the plan table.
func formatAmount(v float64) string { return decimal.NewFromFloat(v).StringFixed(0) }

// formatFloat renders a schedule value with 2 decimals for machine-readable outputs.
func formatFloat(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

func intToString(i int) string { return strconv.Itoa(i) }
