package model

// Default pagination for property searches.
const (
	DefaultPageSize = 6
	MaxPageSize     = 24
)

// SearchFilters represents structured search criteria extracted from a chat
// message. Pointer fields are absent when the user never mentioned them.
type SearchFilters struct {
	City     string   `json:"city,omitempty"`
	State    string   `json:"state,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Beds     *int     `json:"beds,omitempty"`
	Baths    *int     `json:"baths,omitempty"`
	HasPool  bool     `json:"has_pool,omitempty"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Raw      string   `json:"raw,omitempty"`
}

// Empty reports whether no criteria beyond the pagination defaults are set.
func (f SearchFilters) Empty() bool {
	return f.City == "" && f.State == "" && f.MinPrice == nil && f.MaxPrice == nil &&
		f.Beds == nil && f.Baths == nil && !f.HasPool
}
