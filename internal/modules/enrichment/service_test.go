package enrichment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/snipvault/core/internal/config"
	"github.com/snipvault/core/internal/database"
	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/modules/ai"
	"github.com/snipvault/core/internal/modules/quality"
	"github.com/snipvault/core/internal/pkg/apperr"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func nominalText(v string) ai.TextResult {
	return ai.TextResult{Value: v, Confidence: ai.NominalConfidence}
}

func nominalList(v ...string) ai.ListResult {
	return ai.ListResult{Values: v, Confidence: ai.NominalConfidence}
}

func TestBuildUpdatesMergesTaxonomy(t *testing.T) {
	snippet := &models.SnippetModel{
		Title:      "React Counter",
		Tags:       models.StringArray{"hooks"},
		Frameworks: models.StringArray{"react"},
		Libraries:  models.StringArray{"lodash"},
	}

	updates := buildUpdates(snippet,
		nominalText("A counter component."),
		nominalText("Counts clicks."),
		nominalText("no issues found"),
		nominalList("react", "frontend"),
		nominalList("Vue", "react"),
		nominalList("axios"),
		quality.Score("// sample\n\tcode"),
	)

	// User tags are authoritative: suggested tags never replace them.
	assert.Equal(t, models.StringArray{"hooks"}, updates["tags"])
	// Frameworks and libraries union with what the owner supplied.
	assert.Equal(t, models.StringArray{"react", "vue"}, updates["frameworks"])
	assert.Equal(t, models.StringArray{"lodash", "axios"}, updates["libraries"])

	assert.Equal(t, "A counter component.", updates["ai_description"])
	assert.Equal(t, "Counts clicks.", updates["ai_summary"])
	assert.Equal(t, ai.NominalConfidence, updates["ai_confidence"])
	assert.Equal(t, false, updates["needs_analysis"])
	assert.NotNil(t, updates["quality_last_analyzed"])
}

// Plain []string values in a gorm map-update render as SQL row values and
// break the write once they hold more than one element; every JSON-array
// column has to go through the StringArray serializer.
func TestBuildUpdatesArrayColumnsUseSerializer(t *testing.T) {
	updates := buildUpdates(&models.SnippetModel{Title: "typed"},
		nominalText("d"), nominalText("s"), nominalText("a"),
		nominalList("one", "two"),
		nominalList("three", "four"),
		nominalList("lodash", "axios"),
		quality.Score(""),
	)

	for _, column := range []string{"tags", "frameworks", "libraries", "keywords"} {
		_, ok := updates[column].(models.StringArray)
		assert.True(t, ok, "column %s must be a StringArray", column)
	}
	assert.Equal(t, models.StringArray{"lodash", "axios"}, updates["libraries"])
}

func TestBuildUpdatesKeepsOwnerSummary(t *testing.T) {
	snippet := &models.SnippetModel{Title: "summarized", Summary: "my carefully written summary"}

	updates := buildUpdates(snippet,
		nominalText("d"), nominalText("generated summary"), nominalText("a"),
		nominalList(), nominalList(), nominalList(),
		quality.Score(""),
	)

	assert.Equal(t, "my carefully written summary", updates["summary"])
	assert.Equal(t, "generated summary", updates["ai_summary"])
}

func TestBuildUpdatesEncryptedSnippetCompletes(t *testing.T) {
	snippet := &models.SnippetModel{
		Title:      "sealed",
		Encryption: &models.Encryption{EncryptedContent: "deadbeef"},
	}

	updates := buildUpdates(snippet,
		nominalText("d"), nominalText("s"), nominalText("a"),
		nominalList(), nominalList(), nominalList(),
		quality.Score(""),
	)

	// The pass runs for encrypted snippets too, so the flag clears.
	assert.Equal(t, false, updates["needs_analysis"])
	assert.Equal(t, "d", updates["ai_description"])
}

func TestBuildUpdatesFillsEmptyTags(t *testing.T) {
	snippet := &models.SnippetModel{Title: "untagged"}

	updates := buildUpdates(snippet,
		nominalText("d"), nominalText("s"), nominalText("a"),
		nominalList("Sorting", "recursion"),
		nominalList(), nominalList(),
		quality.Score(""),
	)
	assert.Equal(t, models.StringArray{"sorting", "recursion"}, updates["tags"])
}

func TestBuildUpdatesConfidenceIsWorstOfMetadata(t *testing.T) {
	degraded := ai.TextResult{Value: "fallback", Confidence: ai.DegradedConfidence, Degraded: true}
	updates := buildUpdates(&models.SnippetModel{},
		nominalText("d"), degraded, nominalText("a"),
		nominalList(), nominalList(), nominalList(),
		quality.Score(""),
	)
	assert.Equal(t, ai.DegradedConfidence, updates["ai_confidence"])
}

func TestMergeSummary(t *testing.T) {
	generated := nominalText("what the code does")
	assert.Equal(t, "what the code does", mergeSummary("", generated))
	assert.Equal(t, "mine", mergeSummary("mine", generated))

	degraded := ai.TextResult{Value: "python code snippet", Degraded: true}
	assert.Equal(t, "", mergeSummary("", degraded))
	assert.Equal(t, "mine", mergeSummary("mine", degraded))

	long := nominalText(strings.Repeat("x", summaryRuneLimit+40))
	assert.Len(t, []rune(mergeSummary("", long)), summaryRuneLimit)
}

func TestMergeNotes(t *testing.T) {
	analysis := nominalText("consider extracting a helper")
	assert.Equal(t, "consider extracting a helper", mergeNotes("", analysis))
	assert.Equal(t, "my own notes", mergeNotes("my own notes", analysis))

	degraded := ai.TextResult{Value: "fallback", Degraded: true}
	assert.Equal(t, "", mergeNotes("", degraded))
}

func TestCapSet(t *testing.T) {
	values := make([]string, models.MaxTags+5)
	for i := range values {
		values[i] = "v"
	}
	assert.Len(t, capSet(values, models.MaxTags), models.MaxTags)
	assert.Len(t, capSet([]string{"a"}, models.MaxTags), 1)
}

func TestEnqueueValidation(t *testing.T) {
	svc := NewService(testDB(t), nil, nil, zap.NewNop(), config.EnrichmentConfig{Workers: 1, Backlog: 1})

	_, err := svc.Enqueue(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrMalformedID)

	_, err = svc.Enqueue(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
