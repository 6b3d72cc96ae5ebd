package service

import (
	"context"
	"fmt"
	"log"

	"core/internal/model"
	"core/internal/repository"

	"github.com/google/uuid"
)

// VectorIndex is the vector-backend contract of the semantic tier.
type VectorIndex interface {
	Spec(ctx context.Context) (repository.VectorSpec, error)
	Search(ctx context.Context, vector []float32, limit int, filters *model.SearchFilters) ([]repository.VectorHit, error)
}

// PropertyStore is the relational contract of the fallback tier.
type PropertyStore interface {
	SearchWithFilters(ctx context.Context, filters model.SearchFilters, limit, offset int) ([]model.PropertyCard, int, error)
}

// SearchPage is one page of retrieval results. Total may be an upper-bound
// estimate on the semantic path, never less than the rows returned.
type SearchPage struct {
	Rows  []model.PropertyCard
	Total int
}

// HybridSearchService cascades through independent retrieval tiers to
// minimize false negatives: semantic first, relational when the semantic tier
// is missing or empty.
type HybridSearchService struct {
	vector   VectorIndex // nil when no vector backend is configured
	embedder EmbeddingClient
	store    PropertyStore
	timeout  timeoutFn
}

// NewHybridSearchService creates the retrieval engine. vector and embedder
// may be nil; the engine then serves purely from the relational store.
func NewHybridSearchService(vector VectorIndex, embedder EmbeddingClient, store PropertyStore, timeout timeoutFn) *HybridSearchService {
	if timeout == nil {
		timeout = noTimeout
	}
	return &HybridSearchService{vector: vector, embedder: embedder, store: store, timeout: timeout}
}

// searchTier is one uniform fallback strategy. Adding, removing or reordering
// a tier is a local change to the list in Search.
type searchTier struct {
	name string
	run  func(ctx context.Context) (SearchPage, error)
}

// Search resolves (query, filters, offset, limit) into a card page. A tier
// failure or empty result escalates to the next tier; only the last tier's
// failure propagates.
func (s *HybridSearchService) Search(ctx context.Context, query string, filters model.SearchFilters, offset, limit int) (SearchPage, error) {
	limit = clamp(limit, 1, model.MaxPageSize)
	if offset < 0 {
		offset = 0
	}

	tiers := []searchTier{
		{name: "semantic", run: func(ctx context.Context) (SearchPage, error) {
			return s.semanticTier(ctx, query, filters, offset, limit)
		}},
		{name: "relational", run: func(ctx context.Context) (SearchPage, error) {
			return s.relationalTier(ctx, filters, offset, limit)
		}},
	}

	last := SearchPage{Rows: []model.PropertyCard{}}
	for i, tier := range tiers {
		tierCtx, cancel := s.timeout(ctx)
		page, err := tier.run(tierCtx)
		cancel()
		if err != nil {
			if i < len(tiers)-1 {
				log.Printf("search tier %s failed, escalating: %v", tier.name, err)
				continue
			}
			return SearchPage{}, fmt.Errorf("search tier %s: %w", tier.name, err)
		}
		if len(page.Rows) > 0 {
			return page, nil
		}
		if page.Rows != nil {
			last = page
		}
	}
	return last, nil
}

// semanticTier embeds the query and searches the vector backend. The
// reported total is approximated as max(semantic count, relational count)
// because the vector backend has no exact filtered count.
func (s *HybridSearchService) semanticTier(ctx context.Context, query string, filters model.SearchFilters, offset, limit int) (SearchPage, error) {
	if s.vector == nil || s.embedder == nil {
		// Not configured; report empty so the runner falls through.
		return SearchPage{}, nil
	}

	spec, err := s.vector.Spec(ctx)
	if err != nil {
		return SearchPage{}, fmt.Errorf("vector collection unavailable: %w", err)
	}

	vector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return SearchPage{}, fmt.Errorf("embedding failed: %w", err)
	}
	// Reject early on a doomed request rather than let the backend 400.
	if spec.VectorSize > 0 && len(vector) != spec.VectorSize {
		return SearchPage{}, fmt.Errorf("embedding dimension mismatch: got %d, collection expects %d", len(vector), spec.VectorSize)
	}

	searchFilters := &filters
	if spec.FiltersBlocked {
		// Strict mode forbids filtering on unindexed payload fields; drop the
		// filter entirely rather than fail the call.
		searchFilters = nil
	}

	wanted := offset + limit
	// Oversample to absorb normalization losses from incomplete payloads.
	candidates := wanted * 4
	if candidates < 24 {
		candidates = 24
	}

	hits, err := s.vector.Search(ctx, vector, candidates, searchFilters)
	if err != nil {
		return SearchPage{}, fmt.Errorf("vector search failed: %w", err)
	}

	cards := make([]model.PropertyCard, 0, wanted)
	for _, hit := range hits {
		card, ok := cardFromPayload(hit)
		if !ok {
			continue
		}
		cards = append(cards, card)
		if len(cards) >= wanted {
			break
		}
	}
	if len(cards) == 0 {
		return SearchPage{}, nil
	}

	total := len(cards)
	if s.store != nil {
		if _, relTotal, err := s.store.SearchWithFilters(ctx, filters, 1, 0); err == nil && relTotal > total {
			total = relTotal
		}
	}

	if offset >= len(cards) {
		return SearchPage{Rows: []model.PropertyCard{}, Total: total}, nil
	}
	end := offset + limit
	if end > len(cards) {
		end = len(cards)
	}
	return SearchPage{Rows: cards[offset:end], Total: total}, nil
}

func (s *HybridSearchService) relationalTier(ctx context.Context, filters model.SearchFilters, offset, limit int) (SearchPage, error) {
	rows, total, err := s.store.SearchWithFilters(ctx, filters, limit, offset)
	if err != nil {
		return SearchPage{}, err
	}
	return SearchPage{Rows: rows, Total: total}, nil
}

// cardFromPayload maps one vector hit into a PropertyCard. Hits missing every
// essential field (address, city, price) are skipped rather than failing the
// batch.
func cardFromPayload(hit repository.VectorHit) (model.PropertyCard, bool) {
	p := hit.Payload

	address := payloadString(p, "address", "title")
	city := payloadString(p, "city")
	price := payloadFloat(p, "list_price", "price")

	if address == "" && city == "" && price == nil {
		return model.PropertyCard{}, false
	}

	id := payloadString(p, "property_id", "id")
	if id == "" {
		id = hit.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	card := model.PropertyCard{
		ID:         id,
		Slug:       payloadString(p, "slug"),
		Title:      address,
		Address:    address,
		City:       city,
		State:      payloadString(p, "state", "state_or_province"),
		PostalCode: payloadString(p, "postal_code"),
		Price:      price,
		Bedrooms:   payloadInt(p, "bedrooms", "bedrooms_total"),
		Bathrooms:  payloadInt(p, "bathrooms_total", "bathrooms"),
		LivingArea: payloadFloat(p, "living_area"),
		PhotoURL:   payloadString(p, "photo_url", "main_photo_url"),
		Highlights: []string{},
	}
	if card.Slug != "" {
		card.URL = "/properties/" + card.Slug
	} else {
		card.URL = "/properties/" + card.ID
	}
	if b, ok := p["has_pool"].(bool); ok && b {
		card.Highlights = append(card.Highlights, "Pool")
	}
	return card, true
}

func payloadString(p map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := p[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func payloadFloat(p map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		switch v := p[key].(type) {
		case float64:
			f := v
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func payloadInt(p map[string]interface{}, keys ...string) *int {
	for _, key := range keys {
		switch v := p[key].(type) {
		case int64:
			n := int(v)
			return &n
		case float64:
			n := int(v)
			return &n
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
