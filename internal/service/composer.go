package service

import (
	"context"
	"fmt"

	"core/internal/config"
	"core/internal/model"
)

// LeadSink persists captured leads and viewing requests.
type LeadSink interface {
	CreateLead(ctx context.Context, lead model.Lead) error
	CreateViewing(ctx context.Context, viewing model.Viewing) error
}

// Notifier forwards a captured lead to a human channel. Implementations are
// best effort; the conversation never waits on them.
type Notifier interface {
	NotifyLead(ctx context.Context, lead model.Lead) error
}

// Composer renders structured chat responses: versioned UI block specs plus a
// plain-language answer line.
type Composer struct {
	agentPhone string
	agentEmail string
}

func NewComposer(cfg *config.ChatConfig) *Composer {
	return &Composer{agentPhone: cfg.AgentPhone, agentEmail: cfg.AgentEmail}
}

// PropertyResults renders a search result page. Zero matches become a notice
// that suggests talking to an agent instead of an empty grid.
func (c *Composer) PropertyResults(page SearchPage, filters model.SearchFilters) (*model.ChatUISpec, string) {
	summary := SummarizeFilters(filters)
	if len(page.Rows) == 0 {
		text := fmt.Sprintf("No properties matched %s. Try widening the budget or another city, or ask me to connect you with an agent.", summary)
		spec := model.NoticeSpec(model.NoticeInfo, text)
		return &spec, text
	}

	hasMore := filters.Page*filters.PageSize < page.Total
	spec := &model.ChatUISpec{
		Version: model.UISpecVersion,
		Blocks: []model.Block{{
			Type:     model.BlockPropertyResults,
			Summary:  summary,
			Total:    page.Total,
			Page:     filters.Page,
			PageSize: filters.PageSize,
			HasMore:  hasMore,
			Items:    page.Rows,
		}},
	}
	answer := fmt.Sprintf("Found %d propert%s for %s. Showing page %d.",
		page.Total, pluralSuffix(page.Total), summary, filters.Page)
	return spec, answer
}

// ContactAgent renders the human-handoff card.
func (c *Composer) ContactAgent(reason string) (*model.ChatUISpec, string) {
	if reason == "" {
		reason = "I'll connect you with one of our agents."
	}
	spec := &model.ChatUISpec{
		Version: model.UISpecVersion,
		Blocks: []model.Block{{
			Type:     model.BlockContactAgent,
			Headline: reason,
			Phone:    c.agentPhone,
			Email:    c.agentEmail,
		}},
	}
	return spec, reason
}

// Notice renders a single notice block.
func (c *Composer) Notice(kind, text string) (*model.ChatUISpec, string) {
	spec := model.NoticeSpec(kind, text)
	return &spec, text
}

// MortgageAnswer turns a computed breakdown into a plain-language answer.
func (c *Composer) MortgageAnswer(result *model.MortgageResult) string {
	b := result.Breakdown
	answer := fmt.Sprintf(
		"Estimated monthly payment: %s total. Principal and interest %s, property tax %s, insurance %s",
		formatMoney(b.Total), formatMoney(b.MonthlyPI), formatMoney(b.MonthlyTax), formatMoney(b.MonthlyInsurance))
	if b.MonthlyHOA > 0 {
		answer += fmt.Sprintf(", HOA %s", formatMoney(b.MonthlyHOA))
	}
	if b.MonthlyPMI > 0 {
		answer += fmt.Sprintf(", PMI %s", formatMoney(b.MonthlyPMI))
	}
	answer += "."
	if len(result.Scenarios) > 0 {
		answer += " Scenario comparison:"
		for _, sc := range result.Scenarios {
			answer += fmt.Sprintf(" %s → %s/mo.", sc.Label, formatMoney(sc.Breakdown.Total))
		}
	}
	return answer
}

// MortgageClarification asks for the inputs still missing, in a stable order.
func (c *Composer) MortgageClarification(missing []string) string {
	names := map[string]string{
		"price": "the home price",
		"rate":  "the interest rate",
		"years": "the loan term in years",
	}
	answer := "To estimate your payment I still need"
	for i, field := range missing {
		label, ok := names[field]
		if !ok {
			label = field
		}
		switch {
		case i == 0:
			answer += " " + label
		case i == len(missing)-1:
			answer += " and " + label
		default:
			answer += ", " + label
		}
	}
	return answer + "."
}

func formatMoney(v float64) string {
	return "$" + formatPrice(v)
}

func pluralSuffix(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
