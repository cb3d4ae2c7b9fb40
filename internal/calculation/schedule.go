package calculation

import (
	"fmt"
	"math"

	"github.com/annuitet/loan-calculator/internal/domain"
)

// LoanSchedule is the amortization schedule of an annuity loan. It holds six
// parallel sequences indexed by installment number 0..term; index 0 carries
// only the initial balance. The sequences never change length. A Recompute
// overwrites a suffix in place.
type LoanSchedule struct {
	term int

	fee            []float64
	interest       []float64
	principalPaid  []float64
	balance        []float64
	paymentPreTax  []float64
	paymentPostTax []float64

	regimes []domain.Regime
}

// NewLoanSchedule allocates a schedule of termInstallments installments for
// principal and fills it with one generation pass starting at installment 1.
func NewLoanSchedule(principal float64, termInstallments int, terms domain.Terms) (*LoanSchedule, error) {
	if termInstallments < 0 {
		return nil, invalidParameter("term installments", termInstallments, "must not be negative")
	}
	if err := validateNonNegative("principal", principal); err != nil {
		return nil, err
	}

	size := termInstallments + 1
	s := &LoanSchedule{
		term:           termInstallments,
		fee:            make([]float64, size),
		interest:       make([]float64, size),
		principalPaid:  make([]float64, size),
		balance:        make([]float64, size),
		paymentPreTax:  make([]float64, size),
		paymentPostTax: make([]float64, size),
	}
	s.balance[0] = principal

	if err := s.Generate(1, principal, terms); err != nil {
		return nil, err
	}
	return s, nil
}

// Generate fills installments start..term from the given opening balance.
// Installments up to terms.GraceInstallments pay only interest and fee; the
// rest pay a level annuity over the installments remaining after the grace
// phase. Every parameter is validated before the first write, so on error
// the schedule is unchanged.
func (s *LoanSchedule) Generate(start int, openingBalance float64, terms domain.Terms) error {
	if start < 1 || start > s.term+1 {
		return fmt.Errorf("%w: start installment %d not in [1, %d]", ErrIndexOutOfRange, start, s.term+1)
	}
	if err := validateNonNegative("balance", openingBalance); err != nil {
		return err
	}
	if err := s.validateTerms(terms); err != nil {
		return err
	}
	if start > s.term {
		return nil
	}

	firstAmortizing := start
	if terms.GraceInstallments >= firstAmortizing {
		firstAmortizing = terms.GraceInstallments + 1
	}

	var payment float64
	if firstAmortizing <= s.term {
		var err error
		payment, err = AnnuityPayment(openingBalance, terms.InterestRate, s.term-firstAmortizing+1)
		if err != nil {
			return err
		}
	}

	current := openingBalance
	keep := 1 - terms.TaxDeductionRate

	for n := start; n < firstAmortizing; n++ {
		s.interest[n] = current * terms.InterestRate
		s.fee[n] = current * terms.FeeRate
		s.principalPaid[n] = 0
		s.balance[n] = current
		s.paymentPreTax[n] = s.interest[n] + s.fee[n]
		s.paymentPostTax[n] = s.paymentPreTax[n] * keep
	}

	for n := firstAmortizing; n <= s.term; n++ {
		s.interest[n] = current * terms.InterestRate
		s.fee[n] = current * terms.FeeRate
		s.principalPaid[n] = payment - s.interest[n]
		current -= s.principalPaid[n]
		s.balance[n] = current
		s.paymentPreTax[n] = payment + s.fee[n]
		// only interest and fee are deductible
		s.paymentPostTax[n] = (payment-s.principalPaid[n]+s.fee[n])*keep + s.principalPaid[n]
	}

	s.recordRegime(domain.Regime{
		StartInstallment: start,
		OpeningBalance:   openingBalance,
		Terms:            terms,
		Payment:          payment,
	})
	return nil
}

// Recompute applies new terms after installment atInstallment. The balance on
// record at atInstallment becomes the new principal and installments
// atInstallment+1..term are regenerated; installments 0..atInstallment keep
// their values. A balance on record that rounded just below zero at the end
// of an amortization phase is treated as zero.
func (s *LoanSchedule) Recompute(atInstallment int, terms domain.Terms) error {
	if atInstallment < 0 || atInstallment > s.term {
		return indexOutOfRange(atInstallment, s.term)
	}
	return s.Generate(atInstallment+1, math.Max(0, s.balance[atInstallment]), terms)
}

// AnnuityPayment returns the level payment (interest plus principal) that
// amortizes balance over periods installments at the periodic rate.
func AnnuityPayment(balance, rate float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, invalidParameter("periods", periods, "must be positive")
	}
	if rate == 0 {
		return 0, fmt.Errorf("%w: zero interest rate over %d installments", ErrDegenerateRate, periods)
	}
	denominator := 1 - math.Pow(1+rate, -float64(periods))
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0, fmt.Errorf("%w: rate %g over %d installments", ErrDegenerateRate, rate, periods)
	}
	return balance * rate / denominator, nil
}

func (s *LoanSchedule) recordRegime(r domain.Regime) {
	kept := s.regimes[:0]
	for _, existing := range s.regimes {
		if existing.StartInstallment < r.StartInstallment {
			kept = append(kept, existing)
		}
	}
	s.regimes = append(kept, r)
}

func (s *LoanSchedule) validateTerms(terms domain.Terms) error {
	if err := validateNonNegative("interest rate", terms.InterestRate); err != nil {
		return err
	}
	if err := validateNonNegative("fee rate", terms.FeeRate); err != nil {
		return err
	}
	if err := validateNonNegative("tax deduction rate", terms.TaxDeductionRate); err != nil {
		return err
	}
	if terms.TaxDeductionRate > 1 {
		return invalidParameter("tax deduction rate", terms.TaxDeductionRate, "must not exceed 1")
	}
	if terms.GraceInstallments < 0 || terms.GraceInstallments > s.term {
		return invalidParameter("grace installments", terms.GraceInstallments, fmt.Sprintf("must be in [0, %d]", s.term))
	}
	return nil
}

func validateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalidParameter(name, v, "must be a finite non-negative number")
	}
	return nil
}

// InstallmentCount returns the number of installments after period 0.
func (s *LoanSchedule) InstallmentCount() int { return s.term }

func (s *LoanSchedule) Interest(n int) (float64, error)       { return s.at(s.interest, n) }
func (s *LoanSchedule) Fee(n int) (float64, error)            { return s.at(s.fee, n) }
func (s *LoanSchedule) PrincipalPaid(n int) (float64, error)  { return s.at(s.principalPaid, n) }
func (s *LoanSchedule) Balance(n int) (float64, error)        { return s.at(s.balance, n) }
func (s *LoanSchedule) PaymentPreTax(n int) (float64, error)  { return s.at(s.paymentPreTax, n) }
func (s *LoanSchedule) PaymentPostTax(n int) (float64, error) { return s.at(s.paymentPostTax, n) }

func (s *LoanSchedule) at(seq []float64, n int) (float64, error) {
	if n < 0 || n > s.term {
		return 0, indexOutOfRange(n, s.term)
	}
	return seq[n], nil
}

// Installment returns row n of the schedule.
func (s *LoanSchedule) Installment(n int) (domain.Installment, error) {
	if n < 0 || n > s.term {
		return domain.Installment{}, indexOutOfRange(n, s.term)
	}
	return s.row(n), nil
}

// Installments returns a copy of every row, including row 0.
func (s *LoanSchedule) Installments() []domain.Installment {
	rows := make([]domain.Installment, s.term+1)
	for n := range rows {
		rows[n] = s.row(n)
	}
	return rows
}

func (s *LoanSchedule) row(n int) domain.Installment {
	return domain.Installment{
		Number:         n,
		Fee:            s.fee[n],
		Interest:       s.interest[n],
		PrincipalPaid:  s.principalPaid[n],
		Balance:        s.balance[n],
		PaymentPreTax:  s.paymentPreTax[n],
		PaymentPostTax: s.paymentPostTax[n],
	}
}

// Regimes returns the generation passes that shaped the current schedule, in
// installment order.
func (s *LoanSchedule) Regimes() []domain.Regime {
	return append([]domain.Regime(nil), s.regimes...)
}
