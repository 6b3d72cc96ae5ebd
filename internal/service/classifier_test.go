package service

import (
	"context"
	"errors"
	"testing"

	"core/internal/model"
	"core/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM is a scripted CompletionClient shared by the service tests.
type fakeLLM struct {
	enabled      bool
	jsonOut      string
	textOut      string
	err          error
	jsonCalls    int
	textCalls    int
	lastMessages []ChatMessage
}

func (f *fakeLLM) IsEnabled() bool { return f.enabled }

func (f *fakeLLM) ChatText(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error) {
	f.textCalls++
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.textOut, nil
}

func (f *fakeLLM) ChatJSON(ctx context.Context, messages []ChatMessage, maxTokens int, target interface{}) error {
	f.jsonCalls++
	f.lastMessages = messages
	if f.err != nil {
		return f.err
	}
	return utils.ExtractJSON(f.jsonOut, target)
}

func TestClassify_ModelPath(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "search_properties", "entities": {"city": "Irvine", "beds": 3, "price_max": 900000}}`,
	}
	c := NewIntentClassifier(llm, nil)

	got := c.Classify(context.Background(), "3 bed under 900k in Irvine")

	assert.Equal(t, model.IntentSearchProperties, got.Intent)
	require.NotNil(t, got.Entities.City)
	assert.Equal(t, "Irvine", *got.Entities.City)
	require.NotNil(t, got.Entities.Beds)
	assert.Equal(t, 3, *got.Entities.Beds)
	require.NotNil(t, got.Entities.PriceMax)
	assert.Equal(t, 900000.0, *got.Entities.PriceMax)
}

func TestClassify_FencedModelOutput(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: "```json\n{\"intent\": \"mortgage_calc\", \"entities\": {\"price\": 500000, \"rate\": 6, \"years\": 30}}\n```",
	}
	c := NewIntentClassifier(llm, nil)

	got := c.Classify(context.Background(), "what would I pay monthly for a 500k house at 6% over 30 years")

	assert.Equal(t, model.IntentMortgageCalc, got.Intent)
	require.NotNil(t, got.Entities.Rate)
	assert.Equal(t, 6.0, *got.Entities.Rate)
}

func TestClassify_HeuristicFallback(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      model.Intent
	}{
		{"Beds token", "3 bed house somewhere", model.IntentSearchProperties},
		{"Budget token", "my budget is tight", model.IntentSearchProperties},
		{"Pool token", "needs a pool", model.IntentSearchProperties},
		{"In-city token", "anything in austin", model.IntentSearchProperties},
		{"Plain question", "how do escrow accounts work?", model.IntentGeneralFAQ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("Nil client", func(t *testing.T) {
				c := NewIntentClassifier(nil, nil)
				got := c.Classify(context.Background(), tt.utterance)
				assert.Equal(t, tt.want, got.Intent)
			})
			t.Run("Failing client", func(t *testing.T) {
				c := NewIntentClassifier(&fakeLLM{enabled: true, err: errors.New("upstream down")}, nil)
				got := c.Classify(context.Background(), tt.utterance)
				assert.Equal(t, tt.want, got.Intent)
			})
		})
	}
}

func TestClassify_UnknownIntentFallsBack(t *testing.T) {
	llm := &fakeLLM{enabled: true, jsonOut: `{"intent": "order_pizza", "entities": {}}`}
	c := NewIntentClassifier(llm, nil)

	got := c.Classify(context.Background(), "3 bed in irvine")
	assert.Equal(t, model.IntentSearchProperties, got.Intent)
}

func TestClassify_NormalizesEntities(t *testing.T) {
	llm := &fakeLLM{
		enabled: true,
		jsonOut: `{"intent": "search_properties", "entities": {"beds": -2, "price_min": 900000, "price_max": 500000}}`,
	}
	c := NewIntentClassifier(llm, nil)

	got := c.Classify(context.Background(), "some search")
	assert.Nil(t, got.Entities.Beds)
	assert.Nil(t, got.Entities.PriceMin)
	assert.Nil(t, got.Entities.PriceMax)
}

func TestLooksLikeContactRequest(t *testing.T) {
	assert.True(t, looksLikeContactRequest("can I talk to an agent?"))
	assert.True(t, looksLikeContactRequest("please schedule a viewing for Saturday"))
	assert.True(t, looksLikeContactRequest("book a tour"))
	assert.False(t, looksLikeContactRequest("what is a good neighborhood for families?"))
	assert.False(t, looksLikeContactRequest(""))
}
