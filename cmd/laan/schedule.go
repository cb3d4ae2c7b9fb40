package main

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/annuitet/loan-calculator/internal/config"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/annuitet/loan-calculator/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type scheduleOptions struct {
	principal    float64
	interestRate float64
	feeRate      float64
	term         int
	grace        int
	tax          float64
	perYear      int
	start        string
	refinance    []string
	format       string
}

func newScheduleCmd(a *app) *cobra.Command {
	opts := scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the repayment plan of a single loan given on the command line",
		Example: "  laan schedule --principal 1000000 --interest-rate 0.0025 --fee-rate 0.002125 --term 120\n" +
			"  laan schedule --principal 1000000 --interest-rate 0.0025 --term 120 --refinance 20:0.005:0.002125",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.configuration()
			if err != nil {
				return err
			}
			if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
				return err
			}
			results, err := a.newEngine().RunScenarios(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), results, opts.format)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.principal, "principal", 0, "initial principal")
	f.Float64Var(&opts.interestRate, "interest-rate", 0, "interest rate per installment (0.0025 = 1% p.a. paid quarterly)")
	f.Float64Var(&opts.feeRate, "fee-rate", 0, "fee rate per installment on the outstanding balance")
	f.IntVar(&opts.term, "term", 120, "number of installments")
	f.IntVar(&opts.grace, "grace", 0, "installments without principal repayment")
	f.Float64Var(&opts.tax, "tax", domain.DefaultTaxDeductionRate.InexactFloat64(), "tax deduction on interest and fees")
	f.IntVar(&opts.perYear, "per-year", domain.DefaultInstallmentsPerYear, "installments per year")
	f.StringVar(&opts.start, "start", "", "due date of the first installment (YYYY-MM-DD), default first of next month")
	f.StringArrayVar(&opts.refinance, "refinance", nil, "refinance after installment k: k:interest-rate:fee-rate[:grace] (repeatable)")
	f.StringVarP(&opts.format, "format", "f", "console", "report format (see 'laan formats')")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

func (o scheduleOptions) configuration() (*domain.Configuration, error) {
	ga := domain.DefaultGlobalAssumptions()
	ga.InstallmentsPerYear = o.perYear
	ga.TaxDeductionRate = decimal.NewFromFloat(o.tax)
	if o.start != "" {
		d, err := civil.ParseDate(o.start)
		if err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
		ga.StartDate = d
	}

	scenario := domain.Scenario{
		Name: "loan",
		Loan: domain.LoanParameters{
			Principal:         decimal.NewFromFloat(o.principal),
			TermInstallments:  o.term,
			GraceInstallments: o.grace,
			Rates: domain.Rates{
				InterestRate: decimal.NewFromFloat(o.interestRate),
				FeeRate:      decimal.NewFromFloat(o.feeRate),
			},
		},
	}
	for _, arg := range o.refinance {
		rf, err := parseRefinance(arg)
		if err != nil {
			return nil, err
		}
		scenario.Refinancings = append(scenario.Refinancings, rf)
	}

	return &domain.Configuration{GlobalAssumptions: ga, Scenarios: []domain.Scenario{scenario}}, nil
}

// parseRefinance parses "k:interest-rate:fee-rate[:grace]".
func parseRefinance(arg string) (domain.Refinancing, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return domain.Refinancing{}, fmt.Errorf("invalid --refinance %q: want k:interest-rate:fee-rate[:grace]", arg)
	}

	at, err := strconv.Atoi(parts[0])
	if err != nil {
		return domain.Refinancing{}, fmt.Errorf("invalid --refinance %q: installment: %w", arg, err)
	}
	interest, err := decimal.NewFromString(parts[1])
	if err != nil {
		return domain.Refinancing{}, fmt.Errorf("invalid --refinance %q: interest rate: %w", arg, err)
	}
	fee, err := decimal.NewFromString(parts[2])
	if err != nil {
		return domain.Refinancing{}, fmt.Errorf("invalid --refinance %q: fee rate: %w", arg, err)
	}

	rf := domain.Refinancing{
		AtInstallment: at,
		Rates:         domain.Rates{InterestRate: interest, FeeRate: fee},
	}
	if len(parts) == 4 {
		if rf.GraceInstallments, err = strconv.Atoi(parts[3]); err != nil {
			return domain.Refinancing{}, fmt.Errorf("invalid --refinance %q: grace: %w", arg, err)
		}
	}
	return rf, nil
}
