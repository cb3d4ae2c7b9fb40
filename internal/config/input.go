package config

import (
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/annuitet/loan-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a configuration document
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	config := domain.Configuration{GlobalAssumptions: domain.DefaultGlobalAssumptions()}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateGlobalAssumptions(&config.GlobalAssumptions); err != nil {
		return fmt.Errorf("global assumptions validation failed: %w", err)
	}

	if len(config.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i := range config.Scenarios {
		scenario := &config.Scenarios[i]
		if err := ip.validateScenario(&config.GlobalAssumptions, scenario); err != nil {
			return fmt.Errorf("scenario %d validation failed: %w", i, err)
		}
		if seen[scenario.Name] {
			return fmt.Errorf("duplicate scenario name %q", scenario.Name)
		}
		seen[scenario.Name] = true
	}

	return nil
}

func (ip *InputParser) validateGlobalAssumptions(assumptions *domain.GlobalAssumptions) error {
	if _, err := dateutil.MonthsPerInstallment(assumptions.InstallmentsPerYear); err != nil {
		return err
	}
	if err := validateFraction("tax deduction rate", assumptions.TaxDeductionRate); err != nil {
		return err
	}
	return nil
}

func (ip *InputParser) validateScenario(assumptions *domain.GlobalAssumptions, scenario *domain.Scenario) error {
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	loan := &scenario.Loan
	if loan.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("principal must be positive")
	}
	if loan.TermInstallments <= 0 {
		return fmt.Errorf("term installments must be positive")
	}
	if loan.GraceInstallments < 0 || loan.GraceInstallments > loan.TermInstallments {
		return fmt.Errorf("grace installments must be between 0 and %d", loan.TermInstallments)
	}
	if err := validateRates(loan.Rates); err != nil {
		return fmt.Errorf("loan: %w", err)
	}

	for j, rf := range scenario.Refinancings {
		if rf.AtDate == nil && (rf.AtInstallment < 0 || rf.AtInstallment > loan.TermInstallments) {
			return fmt.Errorf("refinancing %d: at_installment must be between 0 and %d", j, loan.TermInstallments)
		}
		if rf.AtDate != nil && rf.AtInstallment != 0 {
			return fmt.Errorf("refinancing %d: specify either at_installment or at_date, not both", j)
		}
		if rf.AtDate != nil && !rf.AtDate.IsValid() {
			return fmt.Errorf("refinancing %d: invalid at_date %s", j, rf.AtDate)
		}
		// without a start date the calendar is only known when the scenario runs
		if rf.AtDate != nil && !assumptions.StartDate.IsZero() {
			last, err := dateutil.InstallmentDate(assumptions.StartDate, loan.TermInstallments, assumptions.InstallmentsPerYear)
			if err != nil {
				return err
			}
			if rf.AtDate.After(last) {
				return fmt.Errorf("refinancing %d: at_date %s is after the final installment due %s", j, rf.AtDate, last)
			}
		}
		if rf.GraceInstallments < 0 || rf.GraceInstallments > loan.TermInstallments {
			return fmt.Errorf("refinancing %d: grace installments must be between 0 and %d", j, loan.TermInstallments)
		}
		if err := validateRates(rf.Rates); err != nil {
			return fmt.Errorf("refinancing %d: %w", j, err)
		}
	}

	return nil
}

func validateRates(r domain.Rates) error {
	if !r.InterestRate.IsZero() && !r.AnnualInterestPercent.IsZero() {
		return fmt.Errorf("specify either interest_rate or annual_interest_percent, not both")
	}
	if !r.FeeRate.IsZero() && !r.AnnualFeePercent.IsZero() {
		return fmt.Errorf("specify either fee_rate or annual_fee_percent, not both")
	}
	for name, v := range map[string]decimal.Decimal{
		"interest rate":           r.InterestRate,
		"fee rate":                r.FeeRate,
		"annual interest percent": r.AnnualInterestPercent,
		"annual fee percent":      r.AnnualFeePercent,
	} {
		if v.LessThan(decimal.Zero) {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if r.TaxDeductionRate != nil {
		return validateFraction("tax deduction rate", *r.TaxDeductionRate)
	}
	return nil
}

func validateFraction(name string, v decimal.Decimal) error {
	if v.LessThan(decimal.Zero) || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

// CreateExampleConfiguration compares a 30-year variable loan refinanced
// after five years with a 30-year loan fixed for ten years.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	ga := domain.DefaultGlobalAssumptions()
	ga.StartDate = civil.Date{Year: 2019, Month: time.January, Day: 1}

	principal := decimal.NewFromInt(1_000_000)
	feePercent := decimal.NewFromFloat(0.85)

	return &domain.Configuration{
		GlobalAssumptions: ga,
		Scenarios: []domain.Scenario{
			{
				Name: "F5",
				Loan: domain.LoanParameters{
					Principal:        principal,
					TermInstallments: 120,
					Rates: domain.Rates{
						AnnualInterestPercent: decimal.NewFromFloat(0.15),
						AnnualFeePercent:      feePercent,
					},
				},
				Refinancings: []domain.Refinancing{
					{
						AtInstallment: 20,
						Rates: domain.Rates{
							AnnualInterestPercent: decimal.NewFromFloat(2.0),
							AnnualFeePercent:      feePercent,
						},
					},
				},
			},
			{
				Name: "F10",
				Loan: domain.LoanParameters{
					Principal:        principal,
					TermInstallments: 120,
					Rates: domain.Rates{
						AnnualInterestPercent: decimal.NewFromFloat(1.0),
						AnnualFeePercent:      feePercent,
					},
				},
			},
		},
	}
}
