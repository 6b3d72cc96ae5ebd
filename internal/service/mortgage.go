package service

import (
	"fmt"
	"math"

	"core/internal/model"
)

// CalculateMortgage computes the monthly payment breakdown. Pure function, no
// I/O; identical inputs always produce an identical breakdown and Total is
// the exact sum of the five monthly components with no rounding.
func CalculateMortgage(in model.MortgageInputs) model.MortgageBreakdown {
	principal := in.Price - in.DownPayment

	monthlyRate := in.AnnualRate / 100 / 12
	n := float64(in.TermYears * 12)

	var monthlyPI float64
	if monthlyRate == 0 {
		// Zero-rate loans reduce to straight division; the amortization
		// factor would be 0/0.
		if n > 0 {
			monthlyPI = principal / n
		}
	} else {
		factor := math.Pow(1+monthlyRate, n)
		monthlyPI = principal * monthlyRate * factor / (factor - 1)
	}

	monthlyTax := in.AnnualTax / 12
	monthlyInsurance := in.AnnualInsurance / 12

	return model.MortgageBreakdown{
		Principal:        principal,
		MonthlyPI:        monthlyPI,
		MonthlyTax:       monthlyTax,
		MonthlyInsurance: monthlyInsurance,
		MonthlyHOA:       in.HOAMonthly,
		MonthlyPMI:       in.PMIMonthly,
		Total:            monthlyPI + monthlyTax + monthlyInsurance + in.HOAMonthly + in.PMIMonthly,
	}
}

// CompareScenarios recomputes the full breakdown for each alternate rate
// and/or term. When both arrays are present they are zipped pairwise;
// otherwise each value varies alone against the base inputs.
func CompareScenarios(base model.MortgageInputs, rates []float64, yearsOptions []int) []model.ScenarioRow {
	var rows []model.ScenarioRow

	switch {
	case len(rates) > 0 && len(yearsOptions) > 0:
		n := len(rates)
		if len(yearsOptions) < n {
			n = len(yearsOptions)
		}
		for i := 0; i < n; i++ {
			in := base
			in.AnnualRate = rates[i]
			in.TermYears = yearsOptions[i]
			rows = append(rows, model.ScenarioRow{
				Label:     fmt.Sprintf("%.2f%% / %d yr", rates[i], yearsOptions[i]),
				Breakdown: CalculateMortgage(in),
			})
		}
	case len(rates) > 0:
		for _, rate := range rates {
			in := base
			in.AnnualRate = rate
			rows = append(rows, model.ScenarioRow{
				Label:     fmt.Sprintf("%.2f%%", rate),
				Breakdown: CalculateMortgage(in),
			})
		}
	case len(yearsOptions) > 0:
		for _, years := range yearsOptions {
			in := base
			in.TermYears = years
			rows = append(rows, model.ScenarioRow{
				Label:     fmt.Sprintf("%d yr", years),
				Breakdown: CalculateMortgage(in),
			})
		}
	}

	return rows
}

// MissingMortgageInputs names the required fields absent from the extracted
// entities, in a fixed order. The orchestrator returns a clarification
// naming exactly these instead of calling the calculator with partial data.
func MissingMortgageInputs(e model.MortgageEntities) []string {
	var missing []string
	if e.Price == nil {
		missing = append(missing, "price")
	}
	if e.Rate == nil {
		missing = append(missing, "rate")
	}
	if e.Years == nil {
		missing = append(missing, "years")
	}
	return missing
}

// MortgageInputsFromEntities builds calculator inputs from a complete entity
// set; callers must have checked MissingMortgageInputs first.
func MortgageInputsFromEntities(e model.MortgageEntities) model.MortgageInputs {
	in := model.MortgageInputs{
		Price:      deref(e.Price),
		AnnualRate: deref(e.Rate),
	}
	if e.Years != nil {
		in.TermYears = *e.Years
	}
	in.DownPayment = deref(e.DownPayment)
	in.AnnualTax = deref(e.PropertyTaxAnnual)
	in.AnnualInsurance = deref(e.HomeInsuranceAnnual)
	in.HOAMonthly = deref(e.HOA)
	in.PMIMonthly = deref(e.PMIMonthly)
	return in
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
