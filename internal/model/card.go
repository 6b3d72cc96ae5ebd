package model

// PropertyCard is the normalized, backend-agnostic representation of one
// listing. Both retrieval tiers map their rows/payloads into this shape.
type PropertyCard struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug,omitempty"`
	Title      string   `json:"title,omitempty"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Bedrooms   *int     `json:"bedrooms,omitempty"`
	Bathrooms  *int     `json:"bathrooms,omitempty"`
	LivingArea *float64 `json:"living_area,omitempty"`
	PhotoURL   string   `json:"photo_url,omitempty"`
	URL        string   `json:"url,omitempty"`
	Highlights []string `json:"highlights"`
}
