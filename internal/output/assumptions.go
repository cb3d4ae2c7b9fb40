package output

import "github.com/shopspring/decimal"

// DefaultAssumptions lists key modeling assumptions rendered when a comparison
// carries none of its own.
var DefaultAssumptions = []string{
	"Installments per year: 4",
	"Tax deduction on interest and fees: 25.5%",
	"Fees are charged on the outstanding balance and are not part of the annuity payment",
	"Refinancing keeps the remaining term and uses the outstanding balance as the new principal",
}

func assumptionsOf(assumptions []string) []string {
	if len(assumptions) == 0 {
		return DefaultAssumptions
	}
	return assumptions
}

var decimalHundred = decimal.NewFromInt(100)
