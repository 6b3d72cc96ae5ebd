package model

// ChatRequest is one inbound conversational turn.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`

	// Optional active-property context. It enriches downstream prompts only
	// and never participates in classification.
	PropertyID       string `json:"property_id,omitempty"`
	PropertySnapshot string `json:"property_snapshot,omitempty"`
}

// ChatResponse is the composed answer for one turn.
type ChatResponse struct {
	SessionID     string          `json:"session_id"`
	Intent        Intent          `json:"intent"`
	Entities      Entities        `json:"entities"`
	Answer        string          `json:"answer"`
	UI            *ChatUISpec     `json:"ui,omitempty"`
	Mortgage      *MortgageResult `json:"mortgage,omitempty"`
	MissingFields []string        `json:"missing_fields,omitempty"`
}
