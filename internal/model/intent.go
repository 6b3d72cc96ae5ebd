package model

// Intent is the closed set of goals a single chat turn can be classified into.
type Intent string

const (
	IntentSearchProperties Intent = "search_properties"
	IntentNeighborhoodInfo Intent = "neighborhood_info"
	IntentMarketAnalysis   Intent = "market_analysis"
	IntentBuyingProcess    Intent = "buying_process"
	IntentMortgageCalc     Intent = "mortgage_calc"
	IntentScheduleViewing  Intent = "schedule_viewing"
	IntentLeadCapture      Intent = "lead_capture"
	IntentGeneralFAQ       Intent = "general_faq"
	IntentHandoffAgent     Intent = "handoff_agent"
)

// ValidIntent reports whether s is a member of the intent enum.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentSearchProperties, IntentNeighborhoodInfo, IntentMarketAnalysis,
		IntentBuyingProcess, IntentMortgageCalc, IntentScheduleViewing,
		IntentLeadCapture, IntentGeneralFAQ, IntentHandoffAgent:
		return true
	}
	return false
}

// IntentResult is the classifier's output for one utterance.
type IntentResult struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// Entities carries every value the classifier can extract. Fields are
// validated once at the classifier boundary; readers use the typed views
// below instead of poking at the bag field by field.
type Entities struct {
	City       *string  `json:"city,omitempty"`
	Beds       *int     `json:"beds,omitempty"`
	Baths      *int     `json:"baths,omitempty"`
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
	When       *string  `json:"when,omitempty"`
	Language   *string  `json:"language,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	PropertyID *string  `json:"property_id,omitempty"`

	Rate                *float64 `json:"rate,omitempty"`
	Years               *int     `json:"years,omitempty"`
	DownPayment         *float64 `json:"down_payment,omitempty"`
	HOA                 *float64 `json:"hoa,omitempty"`
	PropertyTaxAnnual   *float64 `json:"property_tax_annual,omitempty"`
	HomeInsuranceAnnual *float64 `json:"home_insurance_annual,omitempty"`
	PMIMonthly          *float64 `json:"pmi_monthly,omitempty"`

	// Multi-scenario comparisons.
	Rates        []float64 `json:"rates,omitempty"`
	YearsOptions []int     `json:"years_options,omitempty"`

	// Price doubles as the mortgage principal source when the user quotes one.
	Price *float64 `json:"price,omitempty"`
}

// SearchEntities is the view the search path reads.
type SearchEntities struct {
	City     *string
	Beds     *int
	Baths    *int
	PriceMin *float64
	PriceMax *float64
}

// MortgageEntities is the view the mortgage path reads.
type MortgageEntities struct {
	Price               *float64
	Rate                *float64
	Years               *int
	DownPayment         *float64
	HOA                 *float64
	PropertyTaxAnnual   *float64
	HomeInsuranceAnnual *float64
	PMIMonthly          *float64
	Rates               []float64
	YearsOptions        []int
}

// ContactEntities is the view lead capture and viewing scheduling read.
type ContactEntities struct {
	Name       *string
	Email      *string
	Phone      *string
	When       *string
	PropertyID *string
}

func (e Entities) Search() SearchEntities {
	return SearchEntities{City: e.City, Beds: e.Beds, Baths: e.Baths, PriceMin: e.PriceMin, PriceMax: e.PriceMax}
}

func (e Entities) Mortgage() MortgageEntities {
	return MortgageEntities{
		Price:               e.Price,
		Rate:                e.Rate,
		Years:               e.Years,
		DownPayment:         e.DownPayment,
		HOA:                 e.HOA,
		PropertyTaxAnnual:   e.PropertyTaxAnnual,
		HomeInsuranceAnnual: e.HomeInsuranceAnnual,
		PMIMonthly:          e.PMIMonthly,
		Rates:               e.Rates,
		YearsOptions:        e.YearsOptions,
	}
}

func (e Entities) Contact() ContactEntities {
	return ContactEntities{Name: e.Name, Email: e.Email, Phone: e.Phone, When: e.When, PropertyID: e.PropertyID}
}

// Normalize drops values that violate the data model invariants: negative
// numerics are discarded, an inverted price range is cleared rather than
// silently swapped.
func (e *Entities) Normalize() {
	dropNegF := func(p **float64) {
		if *p != nil && **p < 0 {
			*p = nil
		}
	}
	dropNegI := func(p **int) {
		if *p != nil && **p < 0 {
			*p = nil
		}
	}
	dropNegF(&e.PriceMin)
	dropNegF(&e.PriceMax)
	dropNegF(&e.Price)
	dropNegF(&e.Rate)
	dropNegF(&e.DownPayment)
	dropNegF(&e.HOA)
	dropNegF(&e.PropertyTaxAnnual)
	dropNegF(&e.HomeInsuranceAnnual)
	dropNegF(&e.PMIMonthly)
	dropNegI(&e.Beds)
	dropNegI(&e.Baths)
	dropNegI(&e.Years)

	if e.PriceMin != nil && e.PriceMax != nil && *e.PriceMin > *e.PriceMax {
		e.PriceMin = nil
		e.PriceMax = nil
	}
}
