package snippet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/pkg/pagination"
	"github.com/snipvault/core/internal/pkg/response"
	"github.com/snipvault/core/internal/pkg/taxonomy"
)

// Filters narrows the authorization base set. Tags use AND semantics (all
// present), frameworks use OR (any present); the asymmetry is intentional.
type Filters struct {
	Search     string
	Language   string
	Tags       []string
	Frameworks []string
	Category   string
	Domain     string
	Complexity string
	MinQuality *int
	MaxAgeDays *int
}

// Facets are count-by-value breakdowns computed over the base authorization
// set, not the filtered results: they show what the requester could filter
// by, regardless of filters already applied.
type Facets struct {
	Languages    map[string]int64 `json:"languages"`
	Categories   map[string]int64 `json:"categories"`
	Complexities map[string]int64 `json:"complexities"`
	Domains      map[string]int64 `json:"domains"`
	Frameworks   map[string]int64 `json:"frameworks"`
}

// SearchResult bundles one page of matches with pagination and facets.
type SearchResult struct {
	Results    []snippetResponse   `json:"results"`
	Pagination response.Pagination `json:"pagination"`
	Facets     Facets              `json:"facets"`
}

const (
	SortRelevance = "relevance"
	SortPopular   = "popular"
	SortRecent    = "recent"
)

// Search executes an authorization-aware filtered lookup with facets.
func (s *Service) Search(ctx context.Context, requesterID string, f Filters, q pagination.Query, sort string) (*SearchResult, error) {
	tx := s.applyFilters(s.baseSet(ctx, requesterID), f)
	tx = s.applySort(tx, f, sort)

	var items []models.SnippetModel
	pag, err := pagination.Paginate(tx, q, &items)
	if err != nil {
		return nil, err
	}

	facets, err := s.facets(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	results := make([]snippetResponse, len(items))
	for i := range items {
		results[i] = toResponse(&items[i])
	}
	return &SearchResult{Results: results, Pagination: pag, Facets: *facets}, nil
}

// baseSet is the authorization boundary: public and unlisted snippets plus
// everything the requester owns.
func (s *Service) baseSet(ctx context.Context, requesterID string) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.SnippetModel{})
	if requesterID == "" {
		return tx.Where("visibility IN ?", []models.Visibility{models.VisibilityPublic, models.VisibilityUnlisted})
	}
	return tx.Where("visibility IN ? OR owner_id = ?",
		[]models.Visibility{models.VisibilityPublic, models.VisibilityUnlisted}, requesterID)
}

func (s *Service) applyFilters(tx *gorm.DB, f Filters) *gorm.DB {
	if f.Language != "" {
		tx = tx.Where("language = ?", taxonomy.Slugify(f.Language))
	}
	for _, tag := range taxonomy.NormalizeSet(f.Tags) {
		cond, arg := s.arrayContains("tags", tag)
		tx = tx.Where(cond, arg)
	}
	if frameworks := taxonomy.NormalizeSet(f.Frameworks); len(frameworks) > 0 {
		conds := make([]string, 0, len(frameworks))
		args := make([]interface{}, 0, len(frameworks))
		for _, fw := range frameworks {
			cond, arg := s.arrayContains("frameworks", fw)
			conds = append(conds, cond)
			args = append(args, arg)
		}
		tx = tx.Where(strings.Join(conds, " OR "), args...)
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", taxonomy.Slugify(f.Category))
	}
	if f.Domain != "" {
		tx = tx.Where("domain = ?", taxonomy.Slugify(f.Domain))
	}
	if f.Complexity != "" {
		tx = tx.Where("complexity = ?", taxonomy.Slugify(f.Complexity))
	}
	if f.MinQuality != nil {
		tx = tx.Where("quality_overall >= ?", *f.MinQuality)
	}
	if f.MaxAgeDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*f.MaxAgeDays)
		tx = tx.Where("created_at >= ?", cutoff)
	}
	if f.Search != "" {
		like := likePattern(f.Search)
		tx = tx.Where("title LIKE ? ESCAPE '!' OR summary LIKE ? ESCAPE '!'", like, like)
	}
	return tx
}

// likePattern wraps user free-text in a substring LIKE pattern. LIKE
// metacharacters in the input are escaped so "100%" matches literally.
func likePattern(search string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(search)
	return "%" + escaped + "%"
}

// applySort orders results. Pinned snippets always sort first; behind them,
// relevance weighs title matches 5 and summary matches 2, popular sorts by
// views and recent (the default) by creation time.
func (s *Service) applySort(tx *gorm.DB, f Filters, sort string) *gorm.DB {
	if sort == SortRelevance && f.Search != "" {
		like := likePattern(f.Search)
		return tx.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL: "pinned DESC, (CASE WHEN title LIKE ? ESCAPE '!' THEN 5 ELSE 0 END + " +
				"CASE WHEN summary LIKE ? ESCAPE '!' THEN 2 ELSE 0 END) DESC, created_at DESC",
			Vars:               []interface{}{like, like},
			WithoutParentheses: true,
		}})
	}
	if sort == SortPopular {
		return tx.Order("pinned DESC, views DESC, created_at DESC")
	}
	return tx.Order("pinned DESC, created_at DESC")
}

// arrayContains builds a membership test against a JSON-array column. MySQL
// gets JSON_CONTAINS; other dialects fall back to a quoted-substring LIKE,
// which is exact for slug elements since slugs contain no quotes.
func (s *Service) arrayContains(column, slug string) (string, interface{}) {
	if s.db.Dialector.Name() == "mysql" {
		return fmt.Sprintf("JSON_CONTAINS(%s, ?)", column), fmt.Sprintf("%q", slug)
	}
	return column + " LIKE ?", fmt.Sprintf("%%%q%%", slug)
}

type facetRow struct {
	Value string
	Count int64
}

func (s *Service) facets(ctx context.Context, requesterID string) (*Facets, error) {
	facets := &Facets{
		Languages:    map[string]int64{},
		Categories:   map[string]int64{},
		Complexities: map[string]int64{},
		Domains:      map[string]int64{},
		Frameworks:   map[string]int64{},
	}

	for column, dest := range map[string]map[string]int64{
		"language":   facets.Languages,
		"category":   facets.Categories,
		"complexity": facets.Complexities,
		"domain":     facets.Domains,
	} {
		var rows []facetRow
		if err := s.baseSet(ctx, requesterID).
			Select(column + " AS value, COUNT(*) AS count").
			Group(column).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.Value != "" {
				dest[row.Value] = row.Count
			}
		}
	}

	// Frameworks live in a JSON array column, so the unwind happens here
	// rather than in SQL.
	var lists []models.StringArray
	if err := s.baseSet(ctx, requesterID).Pluck("frameworks", &lists).Error; err != nil {
		return nil, err
	}
	for _, list := range lists {
		for _, fw := range list {
			facets.Frameworks[fw]++
		}
	}
	return facets, nil
}
