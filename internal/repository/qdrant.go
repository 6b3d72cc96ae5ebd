package repository

import (
	"context"
	"fmt"
	"strings"

	"core/internal/config"
	"core/internal/model"

	"github.com/qdrant/go-client/qdrant"
)

// VectorSpec describes the target collection: the embedding size it expects
// and whether its strict mode forbids filtering on unindexed payload fields.
type VectorSpec struct {
	VectorSize     int
	FiltersBlocked bool
}

// VectorHit is one scored point with its payload decoded into plain values.
type VectorHit struct {
	ID      string
	Score   float32
	Payload map[string]interface{}
}

// QdrantRepository is the semantic retrieval tier.
type QdrantRepository struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantRepository connects to the vector backend.
func NewQdrantRepository(cfg *config.QdrantConfig) (*QdrantRepository, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &QdrantRepository{client: client, collection: cfg.Collection}, nil
}

// Spec reads the collection configuration. Strict mode with
// unindexed_filtering_retrieve disabled means payload filters on unindexed
// fields are rejected by the server; callers must drop filters instead.
func (r *QdrantRepository) Spec(ctx context.Context) (VectorSpec, error) {
	info, err := r.client.GetCollectionInfo(ctx, r.collection)
	if err != nil {
		return VectorSpec{}, fmt.Errorf("failed to read collection info: %w", err)
	}

	spec := VectorSpec{}
	if cfg := info.GetConfig(); cfg != nil {
		if params := cfg.GetParams(); params != nil {
			if vc := params.GetVectorsConfig(); vc != nil {
				if vp := vc.GetParams(); vp != nil {
					spec.VectorSize = int(vp.GetSize())
				}
			}
		}
		if sm := cfg.GetStrictModeConfig(); sm != nil && sm.GetEnabled() {
			// The flag allows unindexed filtering when true; blocked when
			// explicitly false.
			if sm.UnindexedFilteringRetrieve != nil && !sm.GetUnindexedFilteringRetrieve() {
				spec.FiltersBlocked = true
			}
		}
	}
	return spec, nil
}

// Search runs a vector query. A nil filters value sends no payload filter.
func (r *QdrantRepository) Search(ctx context.Context, vector []float32, limit int, filters *model.SearchFilters) ([]VectorHit, error) {
	req := &qdrant.SearchPoints{
		CollectionName: r.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filters != nil {
		req.Filter = buildPropertyFilter(*filters)
	}

	res, err := r.client.GetPointsClient().Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	return convertHits(res.GetResult()), nil
}

// Close releases the underlying connection.
func (r *QdrantRepository) Close() error {
	return r.client.Close()
}

// buildPropertyFilter mirrors SearchFilters as a metadata filter: normalized
// city keyword, price range, beds/baths minimums and the pool boolean.
func buildPropertyFilter(f model.SearchFilters) *qdrant.Filter {
	var must []*qdrant.Condition

	if f.City != "" {
		must = append(must, qdrant.NewMatchKeyword("city_norm", strings.ToLower(strings.TrimSpace(f.City))))
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rng := &qdrant.Range{}
		if f.MinPrice != nil {
			rng.Gte = f.MinPrice
		}
		if f.MaxPrice != nil {
			rng.Lte = f.MaxPrice
		}
		must = append(must, qdrant.NewRange("list_price", rng))
	}
	if f.Beds != nil {
		beds := float64(*f.Beds)
		must = append(must, qdrant.NewRange("bedrooms", &qdrant.Range{Gte: &beds}))
	}
	if f.Baths != nil {
		baths := float64(*f.Baths)
		must = append(must, qdrant.NewRange("bathrooms_total", &qdrant.Range{Gte: &baths}))
	}
	if f.HasPool {
		must = append(must, qdrant.NewMatchBool("has_pool", true))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func convertHits(points []*qdrant.ScoredPoint) []VectorHit {
	hits := make([]VectorHit, 0, len(points))
	for _, point := range points {
		var id string
		if pid := point.GetId(); pid != nil {
			switch idType := pid.PointIdOptions.(type) {
			case *qdrant.PointId_Uuid:
				id = idType.Uuid
			case *qdrant.PointId_Num:
				id = fmt.Sprintf("%d", idType.Num)
			}
		}

		payload := make(map[string]interface{}, len(point.GetPayload()))
		for key, value := range point.GetPayload() {
			payload[key] = decodeValue(value)
		}

		hits = append(hits, VectorHit{ID: id, Score: point.GetScore(), Payload: payload})
	}
	return hits
}

func decodeValue(value *qdrant.Value) interface{} {
	switch v := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.StringValue
	case *qdrant.Value_IntegerValue:
		return v.IntegerValue
	case *qdrant.Value_DoubleValue:
		return v.DoubleValue
	case *qdrant.Value_BoolValue:
		return v.BoolValue
	case *qdrant.Value_ListValue:
		if v.ListValue == nil {
			return nil
		}
		list := make([]interface{}, len(v.ListValue.Values))
		for i, item := range v.ListValue.Values {
			list[i] = decodeValue(item)
		}
		return list
	default:
		return nil
	}
}
