package snippet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipvault/core/internal/pkg/pagination"
)

func seed(t *testing.T, svc *Service, owner string, dto CreateSnippetDTO) string {
	t.Helper()
	item, err := svc.Create(context.Background(), owner, &dto)
	require.NoError(t, err)
	return item.ID
}

func resultIDs(r *SearchResult) []string {
	ids := make([]string, len(r.Results))
	for i := range r.Results {
		ids[i] = r.Results[i].ID
	}
	return ids
}

func TestSearchTagsRequireAll(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	both := seed(t, svc, owner, CreateSnippetDTO{
		Title: "react with hooks", Content: "x = 1", Visibility: "public",
		Tags: []string{"react", "hooks"},
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "react only", Content: "x = 1", Visibility: "public",
		Tags: []string{"react"},
	})

	result, err := svc.Search(context.Background(), "", Filters{Tags: []string{"react", "hooks"}},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{both}, resultIDs(result))
}

func TestSearchFrameworksMatchAny(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	withReact := seed(t, svc, owner, CreateSnippetDTO{
		Title: "react app", Content: "x = 1", Visibility: "public",
		Frameworks: []string{"react"},
	})
	withDjango := seed(t, svc, owner, CreateSnippetDTO{
		Title: "django app", Content: "x = 1", Visibility: "public",
		Frameworks: []string{"django"},
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "plain code", Content: "x = 1", Visibility: "public",
	})

	result, err := svc.Search(context.Background(), "", Filters{Frameworks: []string{"react", "django"}},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{withReact, withDjango}, resultIDs(result))
}

func TestSearchAuthorizationBaseSet(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()
	stranger := uuid.New().String()

	seed(t, svc, owner, CreateSnippetDTO{Title: "public one", Content: "x = 1", Visibility: "public"})
	seed(t, svc, owner, CreateSnippetDTO{Title: "unlisted one", Content: "x = 1", Visibility: "unlisted"})
	seed(t, svc, owner, CreateSnippetDTO{Title: "private one", Content: "x = 1"})

	anon, err := svc.Search(context.Background(), "", Filters{}, pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Len(t, anon.Results, 2)

	asOwner, err := svc.Search(context.Background(), owner, Filters{}, pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Len(t, asOwner.Results, 3)

	asStranger, err := svc.Search(context.Background(), stranger, Filters{}, pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Len(t, asStranger.Results, 2)
}

func TestSearchFacetsCoverBaseSetRegardlessOfFilters(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	seed(t, svc, owner, CreateSnippetDTO{
		Title: "python one", Content: "x = 1", Visibility: "public",
		Language: "python", Frameworks: []string{"django"},
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "go one", Content: "x = 1", Visibility: "public",
		Language: "go", Frameworks: []string{"gin"},
	})

	// The language filter narrows results but not facets.
	result, err := svc.Search(context.Background(), "", Filters{Language: "python"},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)

	assert.Len(t, result.Results, 1)
	assert.Equal(t, int64(1), result.Facets.Languages["python"])
	assert.Equal(t, int64(1), result.Facets.Languages["go"])
	assert.Equal(t, int64(1), result.Facets.Frameworks["django"])
	assert.Equal(t, int64(1), result.Facets.Frameworks["gin"])

	var facetTotal int64
	for _, n := range result.Facets.Languages {
		facetTotal += n
	}
	assert.Equal(t, int64(2), facetTotal, "language facet counts sum to the base set size")
}

func TestSearchMinQuality(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	low := seed(t, svc, owner, CreateSnippetDTO{Title: "low quality", Content: "x = 1", Visibility: "public"})
	high := seed(t, svc, owner, CreateSnippetDTO{Title: "high quality", Content: "x = 1", Visibility: "public"})
	db := svc.db
	require.NoError(t, db.Table("snippets").Where("id = ?", low).Update("quality_overall", 3).Error)
	require.NoError(t, db.Table("snippets").Where("id = ?", high).Update("quality_overall", 8).Error)

	min := 5
	result, err := svc.Search(context.Background(), "", Filters{MinQuality: &min},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{high}, resultIDs(result))
}

func TestSearchPinnedFirst(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	seed(t, svc, owner, CreateSnippetDTO{Title: "newer plain", Content: "x = 1", Visibility: "public"})
	pinned := seed(t, svc, owner, CreateSnippetDTO{
		Title: "older pinned", Content: "x = 1", Visibility: "public", Pinned: true,
	})

	result, err := svc.Search(context.Background(), "", Filters{},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, pinned, result.Results[0].ID)
}

func TestSearchRelevanceWeighsTitleOverSummary(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	inSummary := seed(t, svc, owner, CreateSnippetDTO{
		Title: "misc helper", Content: "x = 1", Visibility: "public", Summary: "quicksort in practice",
	})
	inTitle := seed(t, svc, owner, CreateSnippetDTO{
		Title: "quicksort implementation", Content: "x = 1", Visibility: "public",
	})

	result, err := svc.Search(context.Background(), "", Filters{Search: "quicksort"},
		pagination.Query{Page: 1, Size: 10}, SortRelevance)
	require.NoError(t, err)
	assert.Equal(t, []string{inTitle, inSummary}, resultIDs(result))
}

func TestSearchFreeTextFilters(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	match := seed(t, svc, owner, CreateSnippetDTO{
		Title: "binary search tree", Content: "x = 1", Visibility: "public",
	})
	seed(t, svc, owner, CreateSnippetDTO{Title: "unrelated", Content: "x = 1", Visibility: "public"})

	result, err := svc.Search(context.Background(), "", Filters{Search: "binary"},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{match}, resultIDs(result))
}

func TestSearchFreeTextTreatsLikeMetacharsLiterally(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	percent := seed(t, svc, owner, CreateSnippetDTO{
		Title: "100% coverage script", Content: "x = 1", Visibility: "public",
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "1000 coverage script", Content: "x = 1", Visibility: "public",
	})
	underscore := seed(t, svc, owner, CreateSnippetDTO{
		Title: "snake_case helper", Content: "x = 1", Visibility: "public",
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "snakeycase helper", Content: "x = 1", Visibility: "public",
	})

	result, err := svc.Search(context.Background(), "", Filters{Search: "100%"},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{percent}, resultIDs(result))

	result, err = svc.Search(context.Background(), "", Filters{Search: "snake_case"},
		pagination.Query{Page: 1, Size: 10}, SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{underscore}, resultIDs(result))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%plain%", likePattern("plain"))
	assert.Equal(t, "%100!%%", likePattern("100%"))
	assert.Equal(t, "%snake!_case%", likePattern("snake_case"))
	assert.Equal(t, "%a!!b%", likePattern("a!b"))
}
