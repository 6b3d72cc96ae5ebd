package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"core/internal/model"

	"github.com/google/uuid"
)

const answerSystemPrompt = `You are a helpful real-estate assistant. Answer concisely and factually.
When you do not know something, say so and suggest speaking to an agent. Plain text only.`

const fallbackAnswer = "I'm having trouble answering that right now. Please try again, or ask me to connect you with an agent."

const searchUnavailableText = "I couldn't find any results right now. Please try again in a moment, or ask me to connect you with an agent."

// ErrEmptyMessage rejects turns with no content before any collaborator runs.
var ErrEmptyMessage = errors.New("message is empty")

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hiya": {}, "yo": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"hola": {}, "howdy": {},
}

// PropertyGetter looks up a single property for prompt context.
type PropertyGetter interface {
	GetPropertyByID(ctx context.Context, id string) (*model.PropertyCard, error)
}

// ChatService orchestrates one conversational turn end to end: session
// bookkeeping, intent classification, the intent-specific pipeline, and
// response composition.
type ChatService struct {
	classifier *IntentClassifier
	search     *HybridSearchService
	memory     *MemoryService
	composer   *Composer
	llm        CompletionClient
	leads      LeadSink
	notifier   Notifier
	properties PropertyGetter

	answerTimeout timeoutFn
	pageSize      int
	maxPageSize   int
}

// ChatServiceOptions bundles the orchestrator's collaborators. classifier,
// memory and composer are required; the rest degrade gracefully when nil.
type ChatServiceOptions struct {
	Classifier *IntentClassifier
	Search     *HybridSearchService
	Memory     *MemoryService
	Composer   *Composer
	LLM        CompletionClient
	Leads      LeadSink
	Notifier   Notifier
	Properties PropertyGetter

	AnswerTimeout   timeoutFn
	DefaultPageSize int
	MaxPageSize     int
}

func NewChatService(opts ChatServiceOptions) *ChatService {
	if opts.AnswerTimeout == nil {
		opts.AnswerTimeout = noTimeout
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = model.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = model.MaxPageSize
	}
	return &ChatService{
		classifier:    opts.Classifier,
		search:        opts.Search,
		memory:        opts.Memory,
		composer:      opts.Composer,
		llm:           opts.LLM,
		leads:         opts.Leads,
		notifier:      opts.Notifier,
		properties:    opts.Properties,
		answerTimeout: opts.AnswerTimeout,
		pageSize:      opts.DefaultPageSize,
		maxPageSize:   opts.MaxPageSize,
	}
}

// Send processes one turn. Session bookkeeping failures are logged but never
// fail the turn; only an empty message or a total retrieval failure surfaces
// as an error to the caller.
func (s *ChatService) Send(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// Greetings short-circuit before any collaborator: no model call, no
	// retrieval, instant answer.
	if isGreeting(message) {
		resp := &model.ChatResponse{
			SessionID: req.SessionID,
			Intent:    model.IntentGeneralFAQ,
			Answer:    "Hi! I can help you search properties, estimate mortgage payments, or connect you with an agent. What are you looking for?",
		}
		s.record(ctx, req.SessionID, req.Language, message, resp.Answer)
		return resp, nil
	}

	if err := s.memory.EnsureSession(ctx, req.SessionID, req.Language); err != nil {
		log.Printf("session upsert failed for %s: %v", req.SessionID, err)
	}
	if err := s.memory.LogTurn(ctx, req.SessionID, model.RoleUser, message); err != nil {
		log.Printf("user turn log failed for %s: %v", req.SessionID, err)
	}

	result := s.classifier.Classify(ctx, message)

	// The heuristic path cannot distinguish FAQ from an explicit ask for a
	// human; a lexical guard catches the latter.
	if result.Intent == model.IntentGeneralFAQ && looksLikeContactRequest(message) {
		result.Intent = model.IntentHandoffAgent
	}

	resp := &model.ChatResponse{
		SessionID: req.SessionID,
		Intent:    result.Intent,
		Entities:  result.Entities,
	}

	switch result.Intent {
	case model.IntentSearchProperties:
		s.handleSearch(ctx, message, result.Entities, resp)
	case model.IntentMortgageCalc:
		s.handleMortgage(result.Entities, resp)
	case model.IntentScheduleViewing:
		s.handleViewing(ctx, req, result.Entities, resp)
	case model.IntentLeadCapture:
		s.handleLead(ctx, req, message, result.Entities, resp)
	case model.IntentHandoffAgent:
		resp.UI, resp.Answer = s.composer.ContactAgent("Happy to put you in touch with one of our agents.")
	default:
		s.handleAnswer(ctx, req, message, resp)
	}

	if logErr := s.memory.LogTurn(ctx, req.SessionID, model.RoleAssistant, resp.Answer); logErr != nil {
		log.Printf("assistant turn log failed for %s: %v", req.SessionID, logErr)
	}
	s.memory.QueueSummarize(req.SessionID)
	return resp, nil
}

// handleSearch never surfaces a backend failure: once every retrieval tier is
// exhausted the user gets a neutral notice, not a transport error.
func (s *ChatService) handleSearch(ctx context.Context, message string, entities model.Entities, resp *model.ChatResponse) {
	filters := ParseSearchFilters(message)
	filters = MergeEntityFilters(filters, entities.Search())
	if filters.PageSize <= 0 {
		filters.PageSize = s.pageSize
	}
	if filters.PageSize > s.maxPageSize {
		filters.PageSize = s.maxPageSize
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	offset := (filters.Page - 1) * filters.PageSize

	page, err := s.search.Search(ctx, message, filters, offset, filters.PageSize)
	if err != nil {
		log.Printf("search exhausted all tiers for %s: %v", resp.SessionID, err)
		resp.UI, resp.Answer = s.composer.Notice(model.NoticeWarning, searchUnavailableText)
		return
	}
	resp.UI, resp.Answer = s.composer.PropertyResults(page, filters)
}

func (s *ChatService) handleMortgage(entities model.Entities, resp *model.ChatResponse) {
	view := entities.Mortgage()
	if missing := MissingMortgageInputs(view); len(missing) > 0 {
		resp.MissingFields = missing
		resp.Answer = s.composer.MortgageClarification(missing)
		return
	}

	inputs := MortgageInputsFromEntities(view)
	result := &model.MortgageResult{
		Inputs:    inputs,
		Breakdown: CalculateMortgage(inputs),
		Scenarios: CompareScenarios(inputs, view.Rates, view.YearsOptions),
	}
	resp.Mortgage = result
	resp.Answer = s.composer.MortgageAnswer(result)
}

// handleViewing answers immediately and persists the request off the hot
// path. A failed write is logged; the user already has the confirmation text
// and an agent card, so the conversation keeps moving.
func (s *ChatService) handleViewing(ctx context.Context, req model.ChatRequest, entities model.Entities, resp *model.ChatResponse) {
	contact := entities.Contact()
	resp.UI, resp.Answer = s.composer.ContactAgent("Got it, I'll arrange a viewing. An agent will confirm the time with you shortly.")

	if s.leads == nil {
		return
	}
	viewing := model.Viewing{
		SessionID:  req.SessionID,
		PropertyID: firstNonEmpty(derefStr(contact.PropertyID), req.PropertyID),
		When:       derefStr(contact.When),
		Name:       derefStr(contact.Name),
		Phone:      derefStr(contact.Phone),
	}
	go func() {
		if err := s.leads.CreateViewing(context.Background(), viewing); err != nil {
			log.Printf("viewing write failed for %s: %v", req.SessionID, err)
		}
	}()
}

func (s *ChatService) handleLead(ctx context.Context, req model.ChatRequest, message string, entities model.Entities, resp *model.ChatResponse) {
	contact := entities.Contact()
	resp.UI, resp.Answer = s.composer.ContactAgent("Thanks! An agent will reach out to you soon.")

	if s.leads == nil {
		return
	}
	lead := model.Lead{
		SessionID:  req.SessionID,
		Name:       derefStr(contact.Name),
		Email:      derefStr(contact.Email),
		Phone:      derefStr(contact.Phone),
		Message:    message,
		PropertyID: firstNonEmpty(derefStr(contact.PropertyID), req.PropertyID),
	}
	go func() {
		if err := s.leads.CreateLead(context.Background(), lead); err != nil {
			log.Printf("lead write failed for %s: %v", req.SessionID, err)
			return
		}
		if s.notifier != nil {
			if err := s.notifier.NotifyLead(context.Background(), lead); err != nil {
				log.Printf("lead notification failed for %s: %v", req.SessionID, err)
			}
		}
	}()
}

// handleAnswer serves the pass-through intents (neighborhood, market, buying
// process, FAQ) with one grounded completion. Any failure degrades to a
// canned fallback instead of erroring the turn.
func (s *ChatService) handleAnswer(ctx context.Context, req model.ChatRequest, message string, resp *model.ChatResponse) {
	if s.llm == nil || !s.llm.IsEnabled() {
		resp.Answer = fallbackAnswer
		return
	}

	ctx, cancel := s.answerTimeout(ctx)
	defer cancel()

	messages := []ChatMessage{{Role: "system", Content: answerSystemPrompt}}
	if summary, err := s.memory.Summary(ctx, req.SessionID); err == nil && summary != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: "Conversation so far: " + summary})
	}
	if snapshot := s.propertySnapshot(ctx, req); snapshot != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: "The user is currently viewing this property: " + snapshot})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	answer, err := s.llm.ChatText(ctx, messages, 0)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			log.Printf("answer generation failed for %s: %v", req.SessionID, err)
		}
		resp.Answer = fallbackAnswer
		return
	}
	resp.Answer = strings.TrimSpace(answer)
}

// propertySnapshot resolves the active-property context: the caller's
// snapshot verbatim when present, otherwise a lookup by id. Lookup failures
// just drop the context.
func (s *ChatService) propertySnapshot(ctx context.Context, req model.ChatRequest) string {
	if req.PropertySnapshot != "" {
		return req.PropertySnapshot
	}
	if req.PropertyID == "" || s.properties == nil {
		return ""
	}
	card, err := s.properties.GetPropertyByID(ctx, req.PropertyID)
	if err != nil || card == nil {
		if err != nil {
			log.Printf("property lookup failed for %s: %v", req.PropertyID, err)
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(card.Address)
	if card.City != "" {
		b.WriteString(", " + capitalizeWords(card.City))
	}
	if card.Price != nil {
		b.WriteString(", listed at $" + formatPrice(*card.Price))
	}
	if card.Bedrooms != nil {
		fmt.Fprintf(&b, ", %d bed", *card.Bedrooms)
	}
	if card.Bathrooms != nil {
		fmt.Fprintf(&b, ", %d bath", *card.Bathrooms)
	}
	return b.String()
}

// record handles session bookkeeping for the greeting fast path.
func (s *ChatService) record(ctx context.Context, sessionID, lang, userMsg, assistantMsg string) {
	if err := s.memory.EnsureSession(ctx, sessionID, lang); err != nil {
		log.Printf("session upsert failed for %s: %v", sessionID, err)
		return
	}
	if err := s.memory.LogTurn(ctx, sessionID, model.RoleUser, userMsg); err != nil {
		log.Printf("user turn log failed for %s: %v", sessionID, err)
	}
	if err := s.memory.LogTurn(ctx, sessionID, model.RoleAssistant, assistantMsg); err != nil {
		log.Printf("assistant turn log failed for %s: %v", sessionID, err)
	}
}

func isGreeting(message string) bool {
	t := strings.ToLower(strings.TrimSpace(message))
	t = strings.TrimRight(t, "!.?, ")
	if t == "" || len(strings.Fields(t)) > 3 {
		return false
	}
	_, ok := greetings[t]
	return ok
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
