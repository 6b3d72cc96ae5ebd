package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"core/internal/model"
)

const classifierSystemPrompt = `Classify the user message into exactly one of:
search_properties, neighborhood_info, market_analysis, buying_process, mortgage_calc,
schedule_viewing, lead_capture, general_faq, handoff_agent.
Extract entities when present: city, beds, baths, price_min, price_max, price, when (ISO),
language, name, email, phone, property_id, rate, years, down_payment, hoa,
property_tax_annual, home_insurance_annual, pmi_monthly.
If the user compares mortgage scenarios, also include arrays when possible:
rates (number[]) and years_options (number[]).
Respond ONLY with JSON: {"intent": string, "entities": object}. Omit entities you did not find.`

// searchTokenRe is the lexical fallback: bed/bath/price/pool/city-like tokens
// mean the user is almost certainly searching.
var searchTokenRe = regexp.MustCompile(`(?i)(bed|bath|sqft|price|budget|under|over|above|below|million|\bk\b|pool|in\s+[a-z])`)

// contactRe routes explicit agent-contact and viewing phrasings. Generic
// buy/purchase mentions stay out; they are too broad.
var contactRe = regexp.MustCompile(`(?i)\b(contact|agent|realtor|broker|call me|speak|talk to|reach out|connect)\b|\bschedule (a )?(viewing|tour|visit)\b|\bbook (a )?(tour|visit|showing|viewing)\b`)

// IntentClassifier decides the user's goal for one turn.
type IntentClassifier struct {
	llm     CompletionClient
	timeout timeoutFn
}

// NewIntentClassifier creates a classifier backed by a completion service.
// A nil client is allowed; every call then uses the local heuristic.
func NewIntentClassifier(llm CompletionClient, timeout timeoutFn) *IntentClassifier {
	if timeout == nil {
		timeout = noTimeout
	}
	return &IntentClassifier{llm: llm, timeout: timeout}
}

type rawClassification struct {
	Intent   string         `json:"intent"`
	Entities model.Entities `json:"entities"`
}

// Classify returns an IntentResult for the utterance. It never fails: when
// the completion call errors or returns unparsable text, the lexical
// heuristic decides instead.
func (c *IntentClassifier) Classify(ctx context.Context, utterance string) model.IntentResult {
	if c.llm != nil && c.llm.IsEnabled() {
		ctx, cancel := c.timeout(ctx)
		defer cancel()

		var raw rawClassification
		err := c.llm.ChatJSON(ctx, []ChatMessage{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: utterance},
		}, 220, &raw)
		if err == nil && model.ValidIntent(raw.Intent) {
			raw.Entities.Normalize()
			return model.IntentResult{Intent: model.Intent(raw.Intent), Entities: raw.Entities}
		}
		if err != nil {
			log.Printf("intent classification failed, using heuristic: %v", err)
		}
	}

	return model.IntentResult{Intent: heuristicIntent(utterance)}
}

// heuristicIntent is the no-model fallback.
func heuristicIntent(utterance string) model.Intent {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if searchTokenRe.MatchString(text) {
		return model.IntentSearchProperties
	}
	return model.IntentGeneralFAQ
}

// looksLikeContactRequest reports whether the message explicitly asks to
// connect with a human or book a viewing.
func looksLikeContactRequest(message string) bool {
	t := strings.TrimSpace(message)
	if t == "" {
		return false
	}
	return contactRe.MatchString(t)
}
