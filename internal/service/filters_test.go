package service

import (
	"testing"

	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchFilters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f model.SearchFilters)
	}{
		{
			name:  "Empty text yields defaults only",
			input: "",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, 1, f.Page)
				assert.Equal(t, model.DefaultPageSize, f.PageSize)
				assert.Empty(t, f.City)
				assert.Nil(t, f.MaxPrice)
				assert.Nil(t, f.Beds)
				assert.Nil(t, f.Baths)
				assert.False(t, f.HasPool)
			},
		},
		{
			name:  "Beds baths price and city",
			input: "3 bed 2 bath under 900k in Irvine",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, "irvine", f.City)
				require.NotNil(t, f.Beds)
				assert.Equal(t, 3, *f.Beds)
				require.NotNil(t, f.Baths)
				assert.Equal(t, 2, *f.Baths)
				require.NotNil(t, f.MaxPrice)
				assert.Equal(t, 900000.0, *f.MaxPrice)
			},
		},
		{
			name:  "Pool and known city without in-phrase boundary",
			input: "houses with a pool in San Diego",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, "san diego", f.City)
				assert.True(t, f.HasPool)
			},
		},
		{
			name:  "City phrase running past the city name",
			input: "condos in san diego with a pool",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, "san diego", f.City)
				assert.True(t, f.HasPool)
			},
		},
		{
			name:  "LA alias expands on word boundary",
			input: "2 bed in LA",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, "los angeles", f.City)
			},
		},
		{
			name:  "Alias does not fire inside other words",
			input: "homes near the lake",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.NotEqual(t, "los angeles", f.City)
			},
		},
		{
			name:  "NYC alias",
			input: "apartments in nyc under $2m",
			check: func(t *testing.T, f model.SearchFilters) {
				assert.Equal(t, "new york", f.City)
				require.NotNil(t, f.MaxPrice)
				assert.Equal(t, 2000000.0, *f.MaxPrice)
			},
		},
		{
			name:  "Million suffix with decimals",
			input: "something below 1.5m",
			check: func(t *testing.T, f model.SearchFilters) {
				require.NotNil(t, f.MaxPrice)
				assert.Equal(t, 1500000.0, *f.MaxPrice)
			},
		},
		{
			name:  "Bare money mention without under",
			input: "show me 800k homes",
			check: func(t *testing.T, f model.SearchFilters) {
				require.NotNil(t, f.MaxPrice)
				assert.Equal(t, 800000.0, *f.MaxPrice)
			},
		},
		{
			name:  "Comma-grouped price",
			input: "under $1,250,000 please",
			check: func(t *testing.T, f model.SearchFilters) {
				require.NotNil(t, f.MaxPrice)
				assert.Equal(t, 1250000.0, *f.MaxPrice)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseSearchFilters(tt.input)
			assert.Equal(t, tt.input, f.Raw)
			tt.check(t, f)
		})
	}
}

func TestParseSearchFilters_Deterministic(t *testing.T) {
	input := "3 bed 2 bath under 900k in Irvine with a pool"
	first := ParseSearchFilters(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ParseSearchFilters(input))
	}
}

func TestMergeEntityFilters(t *testing.T) {
	city := "Austin"
	beds := 4
	priceMax := 750000.0

	t.Run("Entities fill gaps", func(t *testing.T) {
		parsed := ParseSearchFilters("show me houses")
		merged := MergeEntityFilters(parsed, model.SearchEntities{
			City:     &city,
			Beds:     &beds,
			PriceMax: &priceMax,
		})
		assert.Equal(t, "austin", merged.City)
		require.NotNil(t, merged.Beds)
		assert.Equal(t, 4, *merged.Beds)
		require.NotNil(t, merged.MaxPrice)
		assert.Equal(t, 750000.0, *merged.MaxPrice)
	})

	t.Run("Parser wins over entities", func(t *testing.T) {
		parsed := ParseSearchFilters("3 bed under 900k in Irvine")
		merged := MergeEntityFilters(parsed, model.SearchEntities{
			City:     &city,
			Beds:     &beds,
			PriceMax: &priceMax,
		})
		assert.Equal(t, "irvine", merged.City)
		assert.Equal(t, 3, *merged.Beds)
		assert.Equal(t, 900000.0, *merged.MaxPrice)
	})

	t.Run("Inverted range clears min", func(t *testing.T) {
		priceMin := 2000000.0
		parsed := ParseSearchFilters("under 900k")
		merged := MergeEntityFilters(parsed, model.SearchEntities{PriceMin: &priceMin})
		assert.Nil(t, merged.MinPrice)
		require.NotNil(t, merged.MaxPrice)
		assert.Equal(t, 900000.0, *merged.MaxPrice)
	})
}

func TestSummarizeFilters(t *testing.T) {
	t.Run("All fields", func(t *testing.T) {
		maxPrice := 900000.0
		beds, baths := 3, 2
		got := SummarizeFilters(model.SearchFilters{
			City:     "san diego",
			MaxPrice: &maxPrice,
			Beds:     &beds,
			Baths:    &baths,
			HasPool:  true,
		})
		assert.Equal(t, "San Diego • ≤ $900,000 • 3+ beds • 2+ baths • Pool", got)
	})

	t.Run("No filters", func(t *testing.T) {
		assert.Equal(t, "All properties", SummarizeFilters(model.SearchFilters{}))
	})
}
