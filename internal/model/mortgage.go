package model

// MortgageInputs are the parameters of one amortization estimate. Price,
// AnnualRate and TermYears are required; everything else defaults to zero.
type MortgageInputs struct {
	Price           float64 `json:"price" binding:"required"`
	AnnualRate      float64 `json:"annual_rate"`
	TermYears       int     `json:"term_years"`
	DownPayment     float64 `json:"down_payment,omitempty"`
	AnnualTax       float64 `json:"annual_tax,omitempty"`
	AnnualInsurance float64 `json:"annual_insurance,omitempty"`
	HOAMonthly      float64 `json:"hoa_monthly,omitempty"`
	PMIMonthly      float64 `json:"pmi_monthly,omitempty"`
}

// MortgageBreakdown is the monthly payment decomposition. Total is always the
// exact sum of the five monthly components, with no rounding applied.
type MortgageBreakdown struct {
	Principal        float64 `json:"principal"`
	MonthlyPI        float64 `json:"monthly_pi"`
	MonthlyTax       float64 `json:"monthly_tax"`
	MonthlyInsurance float64 `json:"monthly_insurance"`
	MonthlyHOA       float64 `json:"monthly_hoa"`
	MonthlyPMI       float64 `json:"monthly_pmi"`
	Total            float64 `json:"total"`
}

// ScenarioRow labels one alternate rate/term combination in a comparison.
type ScenarioRow struct {
	Label     string            `json:"label"`
	Breakdown MortgageBreakdown `json:"breakdown"`
}

// MortgageResult is returned alongside the composed answer for mortgage
// turns; it needs no card rendering so it is not wrapped in UI blocks.
type MortgageResult struct {
	Inputs    MortgageInputs    `json:"inputs"`
	Breakdown MortgageBreakdown `json:"breakdown"`
	Scenarios []ScenarioRow     `json:"scenarios,omitempty"`
}
