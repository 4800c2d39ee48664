package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/s0up4200/matchmaker/genres"
)

const (
	// minVoteCount keeps statistically noisy titles out of discovery results.
	minVoteCount = 100
	maxRating    = 10
)

// SortKey selects the ordering of discovery results.
type SortKey string

const (
	SortPopularity  SortKey = "popularity"
	SortRating      SortKey = "rating"
	SortReleaseDate SortKey = "release_date"
	SortRevenue     SortKey = "revenue"
)

var sortTokens = map[SortKey]string{
	SortPopularity:  "popularity.desc",
	SortRating:      "vote_average.desc",
	SortReleaseDate: "release_date.desc",
	SortRevenue:     "revenue.desc",
}

// SortKeys lists the accepted sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortPopularity, SortRating, SortReleaseDate, SortRevenue}
}

func unknownSortKey(s string) *InvalidCriteriaError {
	keys := make([]string, 0, len(sortTokens))
	for _, k := range SortKeys() {
		keys = append(keys, string(k))
	}
	return &InvalidCriteriaError{
		Field:  "sortBy",
		Reason: fmt.Sprintf("unknown sort key %q, want one of %s", s, strings.Join(keys, ", ")),
	}
}

// ParseSortKey converts a user-supplied string into a SortKey.
// An empty string selects SortPopularity.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return SortPopularity, nil
	}
	if _, ok := sortTokens[key]; !ok {
		return "", unknownSortKey(s)
	}
	return key, nil
}

// Criteria describes a discovery request. Zero numeric fields are unset.
type Criteria struct {
	Genres         []string `json:"genres,omitempty"`
	ReleaseYearMin int      `json:"releaseYearMin,omitempty"`
	ReleaseYearMax int      `json:"releaseYearMax,omitempty"`
	RuntimeMin     int      `json:"runtimeMin,omitempty"`
	RuntimeMax     int      `json:"runtimeMax,omitempty"`
	MinRating      float64  `json:"minRating,omitempty"`
	IncludeAdult   bool     `json:"includeAdult,omitempty"`
	SortBy         SortKey  `json:"sortBy,omitempty"`
	Page           int      `json:"page,omitempty"`
}

// WithPage returns a copy of c for the given page.
func (c Criteria) WithPage(page int) Criteria {
	c.Page = page
	if c.Genres != nil {
		c.Genres = append([]string(nil), c.Genres...)
	}
	return c
}

// Validate checks the criteria for values TMDB cannot express.
func (c Criteria) Validate() error {
	if c.SortBy != "" {
		if _, ok := sortTokens[c.SortBy]; !ok {
			return unknownSortKey(string(c.SortBy))
		}
	}

	nonNegative := []struct {
		field string
		value int
	}{
		{"page", c.Page},
		{"releaseYearMin", c.ReleaseYearMin},
		{"releaseYearMax", c.ReleaseYearMax},
		{"runtimeMin", c.RuntimeMin},
		{"runtimeMax", c.RuntimeMax},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return &InvalidCriteriaError{Field: f.field, Reason: "must not be negative"}
		}
	}

	if c.MinRating < 0 || c.MinRating > maxRating {
		return &InvalidCriteriaError{Field: "minRating", Reason: "must be between 0 and 10"}
	}
	if c.ReleaseYearMin > 0 && c.ReleaseYearMax > 0 && c.ReleaseYearMin > c.ReleaseYearMax {
		return &InvalidCriteriaError{Field: "releaseYearMin", Reason: "greater than releaseYearMax"}
	}
	if c.RuntimeMin > 0 && c.RuntimeMax > 0 && c.RuntimeMin > c.RuntimeMax {
		return &InvalidCriteriaError{Field: "runtimeMin", Reason: "greater than runtimeMax"}
	}
	return nil
}

func (c Criteria) sortKey() SortKey {
	if c.SortBy == "" {
		return SortPopularity
	}
	return c.SortBy
}

func (c Criteria) page() int {
	if c.Page <= 0 {
		return 1
	}
	return c.Page
}

// Translator turns Criteria into /discover/movie query parameters.
type Translator struct {
	catalog  *genres.Catalog
	apiKey   string
	language string
}

// NewTranslator creates a translator that resolves genre names through catalog.
func NewTranslator(catalog *genres.Catalog, apiKey, language string) *Translator {
	return &Translator{
		catalog:  catalog,
		apiKey:   apiKey,
		language: language,
	}
}

// Translate builds the discovery query for c. The genre catalog is loaded
// before any genre name is resolved.
func (t *Translator) Translate(ctx context.Context, c Criteria) (url.Values, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	t.catalog.EnsureLoaded(ctx)

	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("language", t.language)
	params.Set("page", strconv.Itoa(c.page()))
	params.Set("include_adult", strconv.FormatBool(c.IncludeAdult))
	params.Set("vote_count.gte", strconv.Itoa(minVoteCount))

	if len(c.Genres) > 0 {
		ids := t.catalog.ResolveNamesToIDs(c.Genres)
		if len(ids) > 0 {
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.Itoa(id)
			}
			params.Set("with_genres", strings.Join(parts, ","))
		}
	}

	if c.ReleaseYearMin > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", c.ReleaseYearMin))
	}
	if c.ReleaseYearMax > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", c.ReleaseYearMax))
	}

	if c.RuntimeMin > 0 {
		params.Set("with_runtime.gte", strconv.Itoa(c.RuntimeMin))
	}
	if c.RuntimeMax > 0 {
		params.Set("with_runtime.lte", strconv.Itoa(c.RuntimeMax))
	}

	if c.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(c.MinRating, 'f', -1, 64))
	}

	params.Set("sort_by", sortTokens[c.sortKey()])

	return params, nil
}

// searchParams builds the /search/movie query. Adult titles are always excluded.
func (t *Translator) searchParams(query string, page int) url.Values {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("language", t.language)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")
	return params
}
