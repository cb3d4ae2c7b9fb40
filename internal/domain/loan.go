package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultInstallmentsPerYear is the quarterly payment cadence of a Danish mortgage.
	DefaultInstallmentsPerYear = 4
)

// DefaultTaxDeductionRate is the deduction on interest and fees in effect from 2019.
var DefaultTaxDeductionRate = decimal.NewFromFloat(0.255)

// Configuration is the top-level input: shared assumptions plus the loans to compare
type Configuration struct {
	GlobalAssumptions GlobalAssumptions `yaml:"global_assumptions" json:"global_assumptions"`
	Scenarios         []Scenario        `yaml:"scenarios" json:"scenarios"`
}

// GlobalAssumptions contains the parameters shared by every scenario
type GlobalAssumptions struct {
	InstallmentsPerYear int             `yaml:"installments_per_year" json:"installments_per_year"`
	StartDate           civil.Date      `yaml:"start_date,omitempty" json:"start_date"`
	TaxDeductionRate    decimal.Decimal `yaml:"tax_deduction_rate" json:"tax_deduction_rate"`
}

// DefaultGlobalAssumptions returns quarterly installments and the current tax deduction.
func DefaultGlobalAssumptions() GlobalAssumptions {
	return GlobalAssumptions{
		InstallmentsPerYear: DefaultInstallmentsPerYear,
		TaxDeductionRate:    DefaultTaxDeductionRate,
	}
}

// UnmarshalYAML applies defaults for keys missing from the document.
func (ga *GlobalAssumptions) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		InstallmentsPerYear *int       `yaml:"installments_per_year"`
		StartDate           civil.Date `yaml:"start_date"`
		TaxDeductionRate    *string    `yaml:"tax_deduction_rate"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	*ga = DefaultGlobalAssumptions()
	ga.StartDate = aux.StartDate
	if aux.InstallmentsPerYear != nil {
		ga.InstallmentsPerYear = *aux.InstallmentsPerYear
	}
	if aux.TaxDeductionRate != nil {
		val, err := decimal.NewFromString(*aux.TaxDeductionRate)
		if err != nil {
			return fmt.Errorf("tax_deduction_rate: %w", err)
		}
		ga.TaxDeductionRate = val
	}
	return nil
}

// GenerateAssumptions lists the assumptions rendered next to a comparison
func (ga *GlobalAssumptions) GenerateAssumptions() []string {
	assumptions := []string{
		fmt.Sprintf("Installments per year: %d", ga.InstallmentsPerYear),
		fmt.Sprintf("Tax deduction on interest and fees: %s%%", ga.TaxDeductionRate.Mul(decimal.NewFromInt(100)).StringFixed(1)),
		"Fees are charged on the outstanding balance and are not part of the annuity payment",
	}
	if ga.StartDate != (civil.Date{}) {
		assumptions = append(assumptions, fmt.Sprintf("First installment due: %s", ga.StartDate))
	}
	return assumptions
}

// Rates holds the interest and fee rates of a loan or a refinancing. Rates may
// be given per installment or as nominal annual percentages; annual
// percentages are converted with the installments-per-year cadence.
type Rates struct {
	InterestRate          decimal.Decimal  `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
	FeeRate               decimal.Decimal  `yaml:"fee_rate,omitempty" json:"fee_rate,omitempty"`
	AnnualInterestPercent decimal.Decimal  `yaml:"annual_interest_percent,omitempty" json:"annual_interest_percent,omitempty"`
	AnnualFeePercent      decimal.Decimal  `yaml:"annual_fee_percent,omitempty" json:"annual_fee_percent,omitempty"`
	TaxDeductionRate      *decimal.Decimal `yaml:"tax_deduction_rate,omitempty" json:"tax_deduction_rate,omitempty"`
}

// PeriodicInterestRate returns the interest rate per installment.
func (r Rates) PeriodicInterestRate(installmentsPerYear int) decimal.Decimal {
	return periodic(r.InterestRate, r.AnnualInterestPercent, installmentsPerYear)
}

// PeriodicFeeRate returns the fee rate per installment.
func (r Rates) PeriodicFeeRate(installmentsPerYear int) decimal.Decimal {
	return periodic(r.FeeRate, r.AnnualFeePercent, installmentsPerYear)
}

func periodic(rate, annualPercent decimal.Decimal, installmentsPerYear int) decimal.Decimal {
	if annualPercent.IsZero() || installmentsPerYear <= 0 {
		return rate
	}
	return annualPercent.Div(decimal.NewFromInt(int64(installmentsPerYear))).Div(decimal.NewFromInt(100))
}

// Terms resolves the rates against the global assumptions into generator terms.
func (r Rates) Terms(ga GlobalAssumptions, graceInstallments int) Terms {
	tax := ga.TaxDeductionRate
	if r.TaxDeductionRate != nil {
		tax = *r.TaxDeductionRate
	}
	return Terms{
		FeeRate:           r.PeriodicFeeRate(ga.InstallmentsPerYear).InexactFloat64(),
		InterestRate:      r.PeriodicInterestRate(ga.InstallmentsPerYear).InexactFloat64(),
		TaxDeductionRate:  tax.InexactFloat64(),
		GraceInstallments: graceInstallments,
	}
}

// LoanParameters describes a loan at origination
type LoanParameters struct {
	Principal         decimal.Decimal `yaml:"principal" json:"principal"`
	TermInstallments  int             `yaml:"term_installments" json:"term_installments"`
	GraceInstallments int             `yaml:"grace_installments,omitempty" json:"grace_installments,omitempty"`
	Rates             `yaml:",inline"`
}

// Refinancing changes the rates of a loan after a given installment. The new
// terms apply from the next installment on, using the balance on record at
// AtInstallment as the new principal.
type Refinancing struct {
	AtInstallment int `yaml:"at_installment" json:"at_installment"`

	// Alternative to AtInstallment: the last installment due on or before this date
	AtDate *civil.Date `yaml:"at_date,omitempty" json:"at_date,omitempty"`

	// Absolute installment number up to which no principal is repaid
	GraceInstallments int `yaml:"grace_installments,omitempty" json:"grace_installments,omitempty"`
	Rates             `yaml:",inline"`
}

// Scenario is one loan and the refinancing events applied over its life
type Scenario struct {
	Name         string         `yaml:"name" json:"name"`
	Loan         LoanParameters `yaml:"loan" json:"loan"`
	Refinancings []Refinancing  `yaml:"refinancings,omitempty" json:"refinancings,omitempty"`
}
