package calculation

import (
	"fmt"

	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

var breakEvenTolerance = decimal.NewFromFloat(0.01)

// CalculateCumulativeBreakEven finds the first crossover (if any) between the
// cumulative post-tax payments of schedule A and schedule B. Schedules are
// aligned by installment number and row 0 is skipped. The crossover is
// interpolated linearly inside the installment where the difference changes
// sign. Returns nil, nil when the cumulative payments never cross.
func CalculateCumulativeBreakEven(a, b []domain.Installment) (*domain.BreakEven, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("one or both schedules have no installments")
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	cumA := decimal.Zero
	cumB := decimal.Zero
	diverged := false

	for i := 1; i < n; i++ {
		payA := decimal.NewFromFloat(a[i].PaymentPostTax)
		payB := decimal.NewFromFloat(b[i].PaymentPostTax)

		prevDiff := cumA.Sub(cumB)
		cumA = cumA.Add(payA)
		cumB = cumB.Add(payB)
		currDiff := cumA.Sub(cumB)

		if currDiff.Abs().LessThan(breakEvenTolerance) {
			// identical prefixes are not a crossover
			if !diverged {
				continue
			}
			return &domain.BreakEven{
				Installment:      a[i].Number,
				Fraction:         decimal.NewFromInt(1),
				CumulativeAmount: cumA,
				DueDate:          a[i].DueDate,
			}, nil
		}

		if diverged && prevDiff.Mul(currDiff).LessThan(decimal.Zero) {
			// diff(t) = prevDiff + t*(currDiff - prevDiff); solve diff(t) = 0
			t := prevDiff.Neg().Div(currDiff.Sub(prevDiff))
			if t.LessThan(decimal.Zero) {
				t = decimal.Zero
			} else if t.GreaterThan(decimal.NewFromInt(1)) {
				t = decimal.NewFromInt(1)
			}
			return &domain.BreakEven{
				Installment:      a[i].Number,
				Fraction:         t,
				CumulativeAmount: cumA.Sub(payA).Add(payA.Mul(t)),
				DueDate:          a[i].DueDate,
			}, nil
		}
		diverged = true
	}

	return nil, nil
}
