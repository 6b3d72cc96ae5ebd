package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"core/internal/config"
	"core/internal/utils"
)

// CompletionClient is the completion-service contract the engine consumes.
type CompletionClient interface {
	// ChatText returns the model's free-text answer for the given messages.
	ChatText(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error)

	// ChatJSON asks for a JSON response and decodes it into target, applying
	// the progressive extraction relaxation on the raw text.
	ChatJSON(ctx context.Context, messages []ChatMessage, maxTokens int, target interface{}) error

	// IsEnabled reports whether the client is configured and ready.
	IsEnabled() bool
}

// EmbeddingClient turns text into a fixed-dimension vector.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// OpenAIClient handles OpenAI-compatible API interactions.
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready.
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatMessage represents a single role-tagged message in the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response.
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionRequest represents a chat completion request.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatCompletionResponse represents the API response.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbeddingRequest represents an embedding request.
type EmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingResponse represents the embedding API response.
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// ChatCompletion performs a chat completion request.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("completion API is not enabled (missing API key)")
	}

	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	var result ChatCompletionResponse
	if err := c.post(ctx, "/chat/completions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChatText performs a completion and returns the first choice's text.
func (c *OpenAIClient) ChatText(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error) {
	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion API")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON asks for a JSON object and decodes the model output into target
// using the progressive extraction in utils.ExtractJSON.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []ChatMessage, maxTokens int, target interface{}) error {
	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages:       messages,
		MaxTokens:      maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from completion API")
	}
	content := resp.Choices[0].Message.Content
	if err := utils.ExtractJSON(content, target); err != nil {
		return fmt.Errorf("failed to parse model response: %w", err)
	}
	return nil
}

// CreateEmbedding creates an embedding vector for a single text.
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("embedding API is not enabled (missing API key)")
	}

	req := EmbeddingRequest{
		Model:      c.config.EmbeddingModel,
		Input:      []string{text},
		Dimensions: c.config.EmbeddingDimensions,
	}

	var result EmbeddingResponse
	if err := c.post(ctx, "/embeddings", req, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Data[0].Embedding, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, target interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.APIBase + path
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

var (
	_ CompletionClient = (*OpenAIClient)(nil)
	_ EmbeddingClient  = (*OpenAIClient)(nil)
)
