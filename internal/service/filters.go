package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"core/internal/model"
)

// cityAliases maps shorthand city mentions to canonical names. Patterns are
// word-bounded so "la" does not fire inside "lake" or "plan".
var cityAliases = []struct {
	pattern   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`\blos angeles\b`), "los angeles"},
	{regexp.MustCompile(`\blosangeles\b`), "los angeles"},
	{regexp.MustCompile(`\bla\b`), "los angeles"},
	{regexp.MustCompile(`\bnyc\b`), "new york"},
}

// commonCities is scanned when neither an alias nor an "in <city>" pattern
// matched.
var commonCities = []string{
	"san diego", "los angeles", "irvine", "san francisco", "san jose",
	"long beach", "santa monica", "newport beach", "laguna beach",
	"orange county", "riverside", "ventura", "san fernando valley",
}

var (
	inCityRe    = regexp.MustCompile(`\bin\s+([a-z][a-z\s]*?)(?:[\.,!\?]|$)`)
	underRe     = regexp.MustCompile(`(?:under|below|less than)\s*\$?\s*([\d,\.]+)\s*([mk])?`)
	bareMoneyRe = regexp.MustCompile(`\$?\s*([\d,\.]+)\s*([mk])\b`)
	bedsRe      = regexp.MustCompile(`\b(\d+)\s*bed`)
	bathsRe     = regexp.MustCompile(`\b(\d+)\s*bath`)
	poolRe      = regexp.MustCompile(`\bpools?\b`)
)

// ParseSearchFilters deterministically extracts structured filters from free
// text. No network calls; it is both the primary extractor for the search
// path and an independent check against classifier entities.
func ParseSearchFilters(text string) model.SearchFilters {
	t := strings.ToLower(strings.TrimSpace(text))
	filters := model.SearchFilters{Page: 1, PageSize: model.DefaultPageSize, Raw: text}
	if t == "" {
		return filters
	}

	for _, entry := range cityAliases {
		if entry.pattern.MatchString(t) {
			filters.City = entry.canonical
			break
		}
	}
	if filters.City == "" {
		if m := inCityRe.FindStringSubmatch(t); m != nil {
			phrase := strings.TrimSpace(m[1])
			// The phrase may run past the city name ("in san diego with a
			// pool"); prefer a known city inside it.
			for _, city := range commonCities {
				if strings.Contains(phrase, city) {
					phrase = city
					break
				}
			}
			filters.City = phrase
		}
	}
	if filters.City == "" {
		for _, city := range commonCities {
			if strings.Contains(t, city) {
				filters.City = city
				break
			}
		}
	}

	if m := underRe.FindStringSubmatch(t); m != nil {
		if v, ok := normalizedNumber(m[1], m[2]); ok {
			filters.MaxPrice = &v
		}
	}
	if filters.MaxPrice == nil {
		if m := bareMoneyRe.FindStringSubmatch(t); m != nil {
			if v, ok := normalizedNumber(m[1], m[2]); ok {
				filters.MaxPrice = &v
			}
		}
	}

	if m := bedsRe.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			filters.Beds = &n
		}
	}
	if m := bathsRe.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			filters.Baths = &n
		}
	}

	if poolRe.MatchString(t) {
		filters.HasPool = true
	}

	return filters
}

// normalizedNumber strips commas and applies k/m suffix multipliers.
func normalizedNumber(num, suffix string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "m":
		return n * 1_000_000, true
	case "k":
		return n * 1_000, true
	default:
		return n, true
	}
}

// MergeEntityFilters fills gaps in parsed filters from classifier entities.
// The deterministic parser wins for every field it extracted; entities only
// populate fields the parser left empty.
func MergeEntityFilters(parsed model.SearchFilters, entities model.SearchEntities) model.SearchFilters {
	merged := parsed
	if merged.City == "" && entities.City != nil {
		merged.City = strings.ToLower(strings.TrimSpace(*entities.City))
	}
	if merged.Beds == nil && entities.Beds != nil {
		merged.Beds = entities.Beds
	}
	if merged.Baths == nil && entities.Baths != nil {
		merged.Baths = entities.Baths
	}
	if merged.MinPrice == nil && entities.PriceMin != nil {
		merged.MinPrice = entities.PriceMin
	}
	if merged.MaxPrice == nil && entities.PriceMax != nil {
		merged.MaxPrice = entities.PriceMax
	}
	if merged.MinPrice != nil && merged.MaxPrice != nil && *merged.MinPrice > *merged.MaxPrice {
		merged.MinPrice = nil
	}
	return merged
}

// SummarizeFilters renders the human-readable query summary shown above
// search results.
func SummarizeFilters(f model.SearchFilters) string {
	var parts []string
	if f.City != "" {
		parts = append(parts, capitalizeWords(f.City))
	}
	if f.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("≤ $%s", formatPrice(*f.MaxPrice)))
	}
	if f.Beds != nil {
		parts = append(parts, fmt.Sprintf("%d+ beds", *f.Beds))
	}
	if f.Baths != nil {
		parts = append(parts, fmt.Sprintf("%d+ baths", *f.Baths))
	}
	if f.HasPool {
		parts = append(parts, "Pool")
	}
	if len(parts) == 0 {
		return "All properties"
	}
	return strings.Join(parts, " • ")
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
