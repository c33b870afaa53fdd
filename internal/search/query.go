package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bsearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/monomori/monomori-server/internal/domain"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query      string            // User's search query
	Categories []domain.Category // Categories to include (empty = all)

	// Filters
	Tags    []string // Items carrying any of these tags
	Genres  []string // Items in any of these genres
	Barcode string   // Exact barcode
	MinYear int
	MaxYear int

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "recent", "year"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
}

// SearchHit is a single matching item.
type SearchHit struct {
	ItemID      string            `json:"item_id"`
	Category    domain.Category   `json:"category"`
	Subcategory string            `json:"subcategory,omitempty"`
	Score       float64           `json:"score"`
	Name        string            `json:"name"`
	Creators    string            `json:"creators,omitempty"`
	Series      string            `json:"series,omitempty"`
	Year        int               `json:"year,omitempty"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Categories []FacetCount `json:"categories,omitempty"`
	Tags       []FacetCount `json:"tags,omitempty"`
	Genres     []FacetCount `json:"genres,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

//nolint:gochecknoglobals // Static query tables
var (
	facetFields = []string{"category", "tags", "genres"}

	// textBoosts weights free-text matches per field.
	textBoosts = []struct {
		field string
		boost float64
	}{
		{"name", 3.0},
		{"creators", 1.5},
		{"series", 1.5},
		{"publisher", 1.0},
		{"description", 0.5},
	}

	highlightFields = []string{"name", "creators", "series"}
	storedFields    = []string{"item_id", "category", "subcategory", "name", "creators", "series", "year"}

	// sortFields lists ascending sort keys; descending order prefixes each with "-".
	sortFields = map[string][]string{
		"title":  {"name"},
		"name":   {"name"},
		"recent": {"created_at"},
		"year":   {"year", "name"},
	}
)

const (
	facetSize       = 20
	minPrefixLength = 2
	maxYear         = 3000
)

// Search runs params against the index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy(sortOrder(params))
	req.Fields = storedFields
	if params.IncludeFacets {
		for _, field := range facetFields {
			req.AddFacet(field, bleve.NewFacetRequest(field, facetSize))
		}
	}
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		for _, field := range highlightFields {
			req.Highlight.AddField(field)
		}
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		result.Hits = append(result.Hits, toHit(hit))
	}
	if params.IncludeFacets {
		result.Facets = SearchFacets{
			Categories: facetCounts(res, "category"),
			Tags:       facetCounts(res, "tags"),
			Genres:     facetCounts(res, "genres"),
		}
	}
	return result, nil
}

func toHit(hit *bsearch.DocumentMatch) SearchHit {
	str := func(field string) string {
		v, _ := hit.Fields[field].(string)
		return v
	}
	out := SearchHit{
		ItemID:      str("item_id"),
		Category:    domain.Category(str("category")),
		Subcategory: str("subcategory"),
		Name:        str("name"),
		Creators:    str("creators"),
		Series:      str("series"),
		Score:       hit.Score,
	}
	if year, ok := hit.Fields["year"].(float64); ok {
		out.Year = int(year)
	}
	for field, fragments := range hit.Fragments {
		if len(fragments) == 0 {
			continue
		}
		if out.Highlights == nil {
			out.Highlights = make(map[string]string)
		}
		out.Highlights[field] = fragments[0]
	}
	return out
}

// buildSearchQuery ANDs the free-text query with every filter in params.
// With neither it matches everything.
func buildSearchQuery(params SearchParams) query.Query {
	var clauses []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		clauses = append(clauses, textQuery(q))
	}
	if len(params.Categories) > 0 {
		values := make([]string, len(params.Categories))
		for i, c := range params.Categories {
			values[i] = string(c)
		}
		clauses = append(clauses, anyTerm("category", values))
	}
	if len(params.Tags) > 0 {
		clauses = append(clauses, anyTerm("tags", lowerAll(params.Tags)))
	}
	if len(params.Genres) > 0 {
		clauses = append(clauses, anyTerm("genres", lowerAll(params.Genres)))
	}
	if params.Barcode != "" {
		clauses = append(clauses, anyTerm("barcode", []string{params.Barcode}))
	}
	if params.MinYear > 0 || params.MaxYear > 0 {
		clauses = append(clauses, yearRange(params.MinYear, params.MaxYear))
	}

	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return clauses[0]
	default:
		return bleve.NewConjunctionQuery(clauses...)
	}
}

// textQuery matches q against the weighted text fields, with a fuzzy match
// on the name for typos and a prefix match for partially typed names.
func textQuery(q string) query.Query {
	lower := strings.ToLower(q)
	var parts []query.Query
	for _, tb := range textBoosts {
		m := bleve.NewMatchQuery(q)
		m.SetField(tb.field)
		m.SetBoost(tb.boost)
		parts = append(parts, m)
	}

	fuzzy := bleve.NewFuzzyQuery(lower)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("name")
	fuzzy.SetBoost(0.8)
	parts = append(parts, fuzzy)

	if len(q) >= minPrefixLength {
		prefix := bleve.NewPrefixQuery(lower)
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		parts = append(parts, prefix)
	}
	return bleve.NewDisjunctionQuery(parts...)
}

// yearRange is inclusive at both ends; a zero bound is open.
func yearRange(lo, hi int) query.Query {
	if hi == 0 {
		hi = maxYear
	}
	from, to := float64(lo), float64(hi)
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(&from, &to, &inclusive, &inclusive)
	q.SetField("year")
	return q
}

// anyTerm matches documents whose field holds any of the values exactly.
func anyTerm(field string, values []string) query.Query {
	if len(values) == 1 {
		tq := bleve.NewTermQuery(values[0])
		tq.SetField(field)
		return tq
	}
	terms := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		terms[i] = tq
	}
	return bleve.NewDisjunctionQuery(terms...)
}

// sortOrder maps SortBy to bleve sort keys. Relevance is always best first;
// "recent" defaults to newest first unless asc is asked for.
func sortOrder(params SearchParams) []string {
	fields, ok := sortFields[params.SortBy]
	if !ok {
		return []string{"-_score"}
	}
	desc := params.SortOrder == "desc"
	if params.SortBy == "recent" {
		desc = params.SortOrder != "asc"
	}
	if !desc {
		return fields
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f
		if i == 0 {
			out[i] = "-" + f
		}
	}
	return out
}

func facetCounts(result *bleve.SearchResult, field string) []FacetCount {
	facet, ok := result.Facets[field]
	if !ok || facet.Terms == nil {
		return nil
	}
	var counts []FacetCount
	for _, term := range facet.Terms.Terms() {
		counts = append(counts, FacetCount{Value: term.Term, Count: term.Count})
	}
	return counts
}
