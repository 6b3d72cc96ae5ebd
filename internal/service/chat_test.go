package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"core/internal/config"
	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadSink struct {
	mu       sync.Mutex
	leads    []model.Lead
	viewings []model.Viewing
}

func (f *fakeLeadSink) CreateLead(ctx context.Context, lead model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeLeadSink) CreateViewing(ctx context.Context, viewing model.Viewing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewings = append(f.viewings, viewing)
	return nil
}

func (f *fakeLeadSink) leadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leads)
}

func (f *fakeLeadSink) viewingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.viewings)
}

type chatFixture struct {
	svc    *ChatService
	store  *fakeSessionStore
	props  *fakePropertyStore
	leads  *fakeLeadSink
	memory *MemoryService
}

func newChatFixture(t *testing.T, llm CompletionClient) *chatFixture {
	t.Helper()
	store := newFakeSessionStore()
	props := &fakePropertyStore{}
	leads := &fakeLeadSink{}

	memory := NewMemoryService(store, nil, 24*time.Hour, 12, nil)
	t.Cleanup(memory.Close)

	svc := NewChatService(ChatServiceOptions{
		Classifier: NewIntentClassifier(llm, nil),
		Search:     NewHybridSearchService(nil, nil, props, nil),
		Memory:     memory,
		Composer:   NewComposer(&config.ChatConfig{AgentPhone: "555-0100", AgentEmail: "agents@example.com"}),
		LLM:        llm,
		Leads:      leads,
	})
	return &chatFixture{svc: svc, store: store, props: props, leads: leads, memory: memory}
}

func TestChat_EmptyMessage(t *testing.T) {
	fx := newChatFixture(t, nil)
	_, err := fx.svc.Send(context.Background(), model.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChat_AssignsSessionID(t *testing.T) {
	fx := newChatFixture(t, nil)
	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{Message: "how does escrow work?"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
}

func TestChat_GreetingFastPath(t *testing.T) {
	fx := newChatFixture(t, &fakeLLM{enabled: true, jsonOut: `{"intent": "general_faq"}`})

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{Message: "Hello!", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, model.IntentGeneralFAQ, resp.Intent)
	assert.NotEmpty(t, resp.Answer)
	// No classification happened; the greeting is answered before any model
	// call.
	llm := fx.svc.llm.(*fakeLLM)
	assert.Equal(t, 0, llm.jsonCalls)
	assert.Equal(t, 0, llm.textCalls)

	// Both turns are still on the session log.
	turns, err := fx.store.RecentTurns(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestChat_SearchFlow(t *testing.T) {
	fx := newChatFixture(t, nil)
	fx.props.rows = []model.PropertyCard{{ID: "p1"}, {ID: "p2"}}
	fx.props.total = 9

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "3 bed 2 bath under 900k in Irvine",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.IntentSearchProperties, resp.Intent)
	require.NotNil(t, resp.UI)
	require.Len(t, resp.UI.Blocks, 1)
	block := resp.UI.Blocks[0]
	assert.Equal(t, model.BlockPropertyResults, block.Type)
	assert.Equal(t, 9, block.Total)
	assert.Contains(t, block.Summary, "Irvine")
	assert.Contains(t, block.Summary, "$900,000")
}

func TestChat_SearchBackendDown(t *testing.T) {
	fx := newChatFixture(t, nil)
	fx.props.err = errors.New("pq: connection refused")

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "3 bed under 900k in Irvine",
		SessionID: "s1",
	})
	require.NoError(t, err)

	// Every tier failed; the user gets a neutral notice, never the transport
	// error.
	require.NotNil(t, resp.UI)
	require.Len(t, resp.UI.Blocks, 1)
	assert.Equal(t, model.BlockNotice, resp.UI.Blocks[0].Type)
	assert.Equal(t, model.NoticeWarning, resp.UI.Blocks[0].Kind)
	assert.NotContains(t, resp.Answer, "connection refused")
	assert.NotEmpty(t, resp.Answer)

	// The exchange is still on the session log.
	turns, err := fx.store.RecentTurns(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestChat_SearchFlow_EntitiesFillGaps(t *testing.T) {
	city := "Austin"
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "search_properties", "entities": {"city": "Austin"}}`,
	}
	fx := newChatFixture(t, llm)
	fx.props.rows = []model.PropertyCard{{ID: "p1"}}
	fx.props.total = 1

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "show me family homes",
		SessionID: "s1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.UI)
	assert.Contains(t, resp.UI.Blocks[0].Summary, city)
}

func TestChat_MortgageClarification(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "mortgage_calc", "entities": {"price": 500000}}`,
	}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "what would my monthly payment be for a 500k home?",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.IntentMortgageCalc, resp.Intent)
	assert.Equal(t, []string{"rate", "years"}, resp.MissingFields)
	assert.Nil(t, resp.Mortgage)
	assert.Contains(t, resp.Answer, "interest rate")
}

func TestChat_MortgageComplete(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "mortgage_calc", "entities": {"price": 500000, "rate": 6, "years": 30, "down_payment": 100000}}`,
	}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "500k at 6% over 30 years with 100k down",
		SessionID: "s1",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Mortgage)
	assert.Empty(t, resp.MissingFields)
	assert.Equal(t, 400000.0, resp.Mortgage.Breakdown.Principal)
	assert.InDelta(t, 2398.20, resp.Mortgage.Breakdown.MonthlyPI, 0.01)
	assert.NotEmpty(t, resp.Answer)
}

func TestChat_HandoffAgent(t *testing.T) {
	llm := &fakeLLM{enabled: true, jsonOut: `{"intent": "handoff_agent"}`}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "I want to speak with a human agent",
		SessionID: "s1",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.UI)
	require.Len(t, resp.UI.Blocks, 1)
	assert.Equal(t, model.BlockContactAgent, resp.UI.Blocks[0].Type)
	assert.Equal(t, "555-0100", resp.UI.Blocks[0].Phone)
}

// The lexical guard promotes FAQ answers that are really asks for a person.
func TestChat_ContactGuard(t *testing.T) {
	fx := newChatFixture(t, nil)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "please have an agent contact me",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.IntentHandoffAgent, resp.Intent)
	require.NotNil(t, resp.UI)
	assert.Equal(t, model.BlockContactAgent, resp.UI.Blocks[0].Type)
}

func TestChat_LeadCapture(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "lead_capture", "entities": {"name": "Jordan", "phone": "555-0199"}}`,
	}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "I'm Jordan, call me at 555-0199",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)

	// The write happens off the hot path.
	assert.Eventually(t, func() bool { return fx.leads.leadCount() == 1 }, time.Second, 10*time.Millisecond)
	fx.leads.mu.Lock()
	defer fx.leads.mu.Unlock()
	assert.Equal(t, "Jordan", fx.leads.leads[0].Name)
	assert.Equal(t, "555-0199", fx.leads.leads[0].Phone)
	assert.Equal(t, "s1", fx.leads.leads[0].SessionID)
}

func TestChat_ScheduleViewing(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "schedule_viewing", "entities": {"when": "2026-09-05T10:00:00Z"}}`,
	}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:    "can I see it Saturday morning?",
		SessionID:  "s1",
		PropertyID: "p42",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.UI)

	assert.Eventually(t, func() bool { return fx.leads.viewingCount() == 1 }, time.Second, 10*time.Millisecond)
	fx.leads.mu.Lock()
	defer fx.leads.mu.Unlock()
	assert.Equal(t, "p42", fx.leads.viewings[0].PropertyID)
	assert.Equal(t, "2026-09-05T10:00:00Z", fx.leads.viewings[0].When)
}

func TestChat_PassThroughAnswer(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "neighborhood_info"}`,
		textOut: "Irvine has highly rated schools and master-planned parks.",
	}
	fx := newChatFixture(t, llm)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "tell me about living near downtown",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.IntentNeighborhoodInfo, resp.Intent)
	assert.Equal(t, "Irvine has highly rated schools and master-planned parks.", resp.Answer)
	assert.Nil(t, resp.UI)
}

func TestChat_PassThroughFallback(t *testing.T) {
	fx := newChatFixture(t, nil)

	resp, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "what's your favorite color?",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackAnswer, resp.Answer)
}

func TestChat_PropertySnapshotInPrompt(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "general_faq"}`,
		textOut: "It was built in 1998.",
	}
	fx := newChatFixture(t, llm)

	_, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:          "when was this one built?",
		SessionID:        "s1",
		PropertySnapshot: "3 bed ranch at 1 Main St, built 1998",
	})
	require.NoError(t, err)

	var found bool
	for _, m := range llm.lastMessages {
		if m.Role == "system" && m.Content == "The user is currently viewing this property: 3 bed ranch at 1 Main St, built 1998" {
			found = true
		}
	}
	assert.True(t, found, "property snapshot should be in the prompt")
}

type fakePropertyGetter struct {
	card *model.PropertyCard
}

func (f *fakePropertyGetter) GetPropertyByID(ctx context.Context, id string) (*model.PropertyCard, error) {
	return f.card, nil
}

func TestChat_PropertyLookupWhenNoSnapshot(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "general_faq"}`,
		textOut: "Yes, it has 3 bedrooms.",
	}
	fx := newChatFixture(t, llm)

	price := 800000.0
	beds := 3
	fx.svc.properties = &fakePropertyGetter{card: &model.PropertyCard{
		Address:  "1 Main St",
		City:     "irvine",
		Price:    &price,
		Bedrooms: &beds,
	}}

	_, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:    "does it have three bedrooms?",
		SessionID:  "s1",
		PropertyID: "p42",
	})
	require.NoError(t, err)

	var snapshot string
	for _, m := range llm.lastMessages {
		if m.Role == "system" && len(m.Content) > 0 && m.Content != answerSystemPrompt {
			snapshot = m.Content
		}
	}
	assert.Contains(t, snapshot, "1 Main St, Irvine, listed at $800,000, 3 bed")
}

func TestChat_LogsTurns(t *testing.T) {
	fx := newChatFixture(t, nil)

	_, err := fx.svc.Send(context.Background(), model.ChatRequest{
		Message:   "how does escrow work?",
		SessionID: "s1",
	})
	require.NoError(t, err)

	turns, err := fx.store.RecentTurns(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, isGreeting("hi"))
	assert.True(t, isGreeting("Hello!"))
	assert.True(t, isGreeting("good morning"))
	assert.False(t, isGreeting("hello, I need a 3 bed in irvine"))
	assert.False(t, isGreeting("hill"))
	assert.False(t, isGreeting(""))
}
