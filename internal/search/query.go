package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query  string
	Limit  int
	Offset int
}

// Hit is one matching recipe.
type Hit struct {
	RecipeID int64
	UserID   int64
	Score    float64
	Title    string
}

// OwnerID returns the recipe owner, so hits can be ownership-filtered.
func (h Hit) OwnerID() int64 { return h.UserID }

// Search returns recipes matching params.Query, best match first. Hits
// are not scoped to a user.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) ([]Hit, error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []Hit{}, nil
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(q), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "-created_at"})
	req.Fields = []string{"user_id", "title"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with malformed id", "id", h.ID)
			continue
		}
		hit := Hit{RecipeID: id, Score: h.Score}
		if u, ok := h.Fields["user_id"].(float64); ok {
			hit.UserID = int64(u)
		}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildSearchQuery matches the title (boosted), tag and ingredient names,
// and the description. Fuzzy and prefix clauses on the title tolerate
// typos and partial input.
func buildSearchQuery(q string) query.Query {
	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	tagsMatch := bleve.NewMatchQuery(q)
	tagsMatch.SetField("tags")
	tagsMatch.SetBoost(1.5)

	ingredientsMatch := bleve.NewMatchQuery(q)
	ingredientsMatch.SetField("ingredients")
	ingredientsMatch.SetBoost(1.5)

	descMatch := bleve.NewMatchQuery(q)
	descMatch.SetField("description")

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)

	queries := []query.Query{titleMatch, tagsMatch, ingredientsMatch, descMatch, fuzzy}

	if len(q) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(q))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
