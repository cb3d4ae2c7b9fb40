package dateutil

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// MonthsPerInstallment returns the spacing of installments in months. The
// cadence must divide the year evenly.
func MonthsPerInstallment(installmentsPerYear int) (int, error) {
	if installmentsPerYear <= 0 || 12%installmentsPerYear != 0 {
		return 0, fmt.Errorf("installments per year must divide 12, got %d", installmentsPerYear)
	}
	return 12 / installmentsPerYear, nil
}

// AddMonths adds months to a date, clamping to the last day of the target
// month instead of overflowing into the next one (Jan 31 + 1 month = Feb 28).
func AddMonths(d civil.Date, months int) civil.Date {
	first := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := d.Day
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return civil.Date{Year: first.Year(), Month: first.Month(), Day: day}
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InstallmentDate returns the due date of installment n when installment 1 is
// due on first. Installment 0 is the origination date one period earlier.
func InstallmentDate(first civil.Date, n, installmentsPerYear int) (civil.Date, error) {
	months, err := MonthsPerInstallment(installmentsPerYear)
	if err != nil {
		return civil.Date{}, err
	}
	return AddMonths(first, (n-1)*months), nil
}

// InstallmentLabel renders the "term/year" label of a due date, where term is
// the 1-based position of the installment within its calendar year.
func InstallmentLabel(due civil.Date, installmentsPerYear int) string {
	months, err := MonthsPerInstallment(installmentsPerYear)
	if err != nil {
		return due.String()
	}
	term := (int(due.Month)-1)/months + 1
	return fmt.Sprintf("%d/%d", term, due.Year)
}

// FirstOfNextMonth returns the first day of the month after t.
func FirstOfNextMonth(t time.Time) civil.Date {
	next := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return civil.DateOf(next)
}

// InstallmentsDueBy returns the number of installments due on or before
// date when installment 1 is due on first. Due dates are clamped to month end
// the same way InstallmentDate clamps them.
func InstallmentsDueBy(first, date civil.Date, installmentsPerYear int) (int, error) {
	months, err := MonthsPerInstallment(installmentsPerYear)
	if err != nil {
		return 0, err
	}
	if date.Before(first) {
		return 0, nil
	}

	diff := (date.Year-first.Year)*12 + int(date.Month) - int(first.Month)
	n := diff/months + 1
	for n > 0 && AddMonths(first, (n-1)*months).After(date) {
		n--
	}
	for !AddMonths(first, n*months).After(date) {
		n++
	}
	return n, nil
}
