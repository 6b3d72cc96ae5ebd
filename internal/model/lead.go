package model

// Lead is a captured buyer contact, written as a fire-and-forget side effect
// after the answer is composed.
type Lead struct {
	SessionID  string `db:"session_id" json:"session_id"`
	Name       string `db:"name" json:"name,omitempty"`
	Email      string `db:"email" json:"email,omitempty"`
	Phone      string `db:"phone" json:"phone,omitempty"`
	Message    string `db:"message" json:"message,omitempty"`
	PropertyID string `db:"property_id" json:"property_id,omitempty"`
}

// Viewing is a requested property viewing slot.
type Viewing struct {
	SessionID  string `db:"session_id" json:"session_id"`
	PropertyID string `db:"property_id" json:"property_id,omitempty"`
	When       string `db:"requested_at" json:"when,omitempty"`
	Name       string `db:"name" json:"name,omitempty"`
	Phone      string `db:"phone" json:"phone,omitempty"`
}
