package snippet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/pkg/apperr"
)

func setCounters(t *testing.T, svc *Service, id string, views, copied, stars int) {
	t.Helper()
	require.NoError(t, svc.db.Table("snippets").Where("id = ?", id).Updates(map[string]interface{}{
		"views": views, "copied": copied, "stars": stars,
	}).Error)
}

func TestTrendingRankOrder(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	first := seed(t, svc, owner, CreateSnippetDTO{Title: "first one", Content: "x = 1", Visibility: "public"})
	second := seed(t, svc, owner, CreateSnippetDTO{Title: "second one", Content: "x = 1", Visibility: "public"})
	third := seed(t, svc, owner, CreateSnippetDTO{Title: "third one", Content: "x = 1", Visibility: "public"})

	setCounters(t, svc, first, 10, 1, 0) // 13
	setCounters(t, svc, second, 5, 0, 0) // 5
	setCounters(t, svc, third, 0, 2, 1)  // 11

	entries, err := svc.Trending(context.Background(), "24h", "", "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{first, third, second},
		[]string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, 13, entries[0].Score)
	assert.Equal(t, 11, entries[1].Score)
	assert.Equal(t, 5, entries[2].Score)
}

func TestTrendingScoreLinearInCopied(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	id := seed(t, svc, owner, CreateSnippetDTO{Title: "linear test", Content: "x = 1", Visibility: "public"})
	setCounters(t, svc, id, 4, 2, 1)

	entries, err := svc.Trending(context.Background(), "24h", "", "", 10)
	require.NoError(t, err)
	before := entries[0].Score

	require.NoError(t, svc.IncrementCopied(context.Background(), id))

	entries, err = svc.Trending(context.Background(), "24h", "", "", 10)
	require.NoError(t, err)
	assert.Equal(t, before+3, entries[0].Score)
}

func TestTrendingWindowExcludesOldSnippets(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	fresh := seed(t, svc, owner, CreateSnippetDTO{Title: "fresh one", Content: "x = 1", Visibility: "public"})
	old := seed(t, svc, owner, CreateSnippetDTO{Title: "old one", Content: "x = 1", Visibility: "public"})
	require.NoError(t, svc.db.Table("snippets").Where("id = ?", old).
		Update("created_at", time.Now().AddDate(0, 0, -10)).Error)
	setCounters(t, svc, old, 1000, 100, 100) // huge lifetime score, outside the window

	entries, err := svc.Trending(context.Background(), "7d", "", "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fresh, entries[0].ID)

	// The 30d window readmits it, lifetime counters intact.
	entries, err = svc.Trending(context.Background(), "30d", "", "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, old, entries[0].ID)
}

func TestTrendingPublicOnly(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	seed(t, svc, owner, CreateSnippetDTO{Title: "private one", Content: "x = 1"})
	seed(t, svc, owner, CreateSnippetDTO{Title: "unlisted one", Content: "x = 1", Visibility: "unlisted"})
	pub := seed(t, svc, owner, CreateSnippetDTO{Title: "public one", Content: "x = 1", Visibility: "public"})

	entries, err := svc.Trending(context.Background(), "24h", "", "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pub, entries[0].ID)
}

func TestTrendingDenormalizesOwnerName(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := models.UserModel{Username: "ada", Name: "Ada Lovelace"}
	require.NoError(t, db.Create(&user).Error)

	seed(t, svc, user.ID, CreateSnippetDTO{Title: "owned one", Content: "x = 1", Visibility: "public"})

	entries, err := svc.Trending(context.Background(), "24h", "", "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ada Lovelace", entries[0].OwnerName)
}

func TestTrendingFilters(t *testing.T) {
	svc := NewService(testDB(t))
	owner := uuid.New().String()

	py := seed(t, svc, owner, CreateSnippetDTO{
		Title: "python utils", Content: "x = 1", Visibility: "public",
		Language: "python", Category: "utilities",
	})
	seed(t, svc, owner, CreateSnippetDTO{
		Title: "go utils", Content: "x = 1", Visibility: "public",
		Language: "go", Category: "utilities",
	})

	entries, err := svc.Trending(context.Background(), "24h", "", "python", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, py, entries[0].ID)

	entries, err = svc.Trending(context.Background(), "24h", "utilities", "", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTrendingRejectsUnknownTimeframe(t *testing.T) {
	svc := NewService(testDB(t))

	_, err := svc.Trending(context.Background(), "90d", "", "", 10)
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "timeframe", ve.Fields[0].Field)
}
