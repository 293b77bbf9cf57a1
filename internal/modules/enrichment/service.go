// Package enrichment runs the one-shot background pass that fills in a
// snippet's AI metadata, taxonomy suggestions and quality scores after
// creation. Work is tracked in durable records so a crash mid-run is
// visible, and executed on a bounded worker pool.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/snipvault/core/internal/config"
	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/modules/ai"
	"github.com/snipvault/core/internal/modules/quality"
	"github.com/snipvault/core/internal/pkg/apperr"
	"github.com/snipvault/core/internal/pkg/taskqueue"
	"github.com/snipvault/core/internal/pkg/taxonomy"
)

// ErrBacklogFull is returned when the queued-job backlog is at capacity.
var ErrBacklogFull = errors.New("enrichment backlog full")

type job struct {
	recordID  string
	snippetID string
}

// Service orchestrates enrichment passes.
type Service struct {
	db      *gorm.DB
	records *taskqueue.Service
	gen     *ai.Service
	logger  *zap.Logger

	jobs    chan job
	workers int
}

func NewService(db *gorm.DB, records *taskqueue.Service, gen *ai.Service, logger *zap.Logger, cfg config.EnrichmentConfig) *Service {
	return &Service{
		db:      db,
		records: records,
		gen:     gen,
		logger:  logger,
		jobs:    make(chan job, cfg.Backlog),
		workers: cfg.Workers,
	}
}

// Start launches the worker pool. Workers drain the backlog until ctx is
// cancelled; Start returns once all of them have exited.
func (s *Service) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case j := <-s.jobs:
					s.process(ctx, j)
				}
			}
		})
	}
	return g.Wait()
}

// Enqueue registers an enrichment pass for the snippet. Enrichment is
// one-shot: a snippet that already has a record gets the existing record
// back and no new work. The record is created before the job is queued, so
// a full backlog leaves a visible failed record rather than silence.
func (s *Service) Enqueue(ctx context.Context, snippetID string) (*taskqueue.Record, error) {
	if _, err := uuid.Parse(snippetID); err != nil {
		return nil, apperr.ErrMalformedID
	}

	var snippet models.SnippetModel
	if err := s.db.WithContext(ctx).First(&snippet, "id = ?", snippetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	rec, created, err := s.records.Create(ctx, snippetID)
	if err != nil {
		return nil, err
	}
	if !created {
		return rec, nil
	}

	select {
	case s.jobs <- job{recordID: rec.ID, snippetID: snippetID}:
		return rec, nil
	default:
		_ = s.records.SetStatus(ctx, rec.ID, taskqueue.StatusFailed, ErrBacklogFull.Error())
		return nil, ErrBacklogFull
	}
}

// process runs one full enrichment pass. All generator steps are guarded:
// they degrade to fallbacks instead of erroring, so a pass only fails on
// storage problems. Results are merged and persisted in a single write.
func (s *Service) process(ctx context.Context, j job) {
	log := s.logger.With(zap.String("record", j.recordID), zap.String("snippet", j.snippetID))

	if err := s.records.SetStatus(ctx, j.recordID, taskqueue.StatusRunning, ""); err != nil {
		log.Warn("mark record running failed", zap.Error(err))
	}

	var snippet models.SnippetModel
	if err := s.db.WithContext(ctx).First(&snippet, "id = ?", j.snippetID).Error; err != nil {
		s.fail(ctx, j.recordID, log, fmt.Errorf("load snippet: %w", err))
		return
	}
	code, language := snippet.Content, snippet.Language

	var (
		description, summary, analysis ai.TextResult
		tags, frameworks, libraries    ai.ListResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		description = s.gen.GenerateDescription(gctx, code, language)
		summary = s.gen.GenerateSummary(gctx, code, language)
		return nil
	})
	g.Go(func() error { tags = s.gen.ExtractTags(gctx, code, language); return nil })
	g.Go(func() error { frameworks = s.gen.DetectFrameworks(gctx, code, language); return nil })
	g.Go(func() error { libraries = s.gen.DetectLibraries(gctx, code, language); return nil })
	g.Go(func() error { analysis = s.gen.AnalyzeCode(gctx, code, language); return nil })
	metrics := quality.Score(code)
	_ = g.Wait() // guarded steps never error

	updates := buildUpdates(&snippet, description, summary, analysis, tags, frameworks, libraries, metrics)
	if err := s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("id = ?", j.snippetID).
		Updates(updates).Error; err != nil {
		s.fail(ctx, j.recordID, log, fmt.Errorf("persist enrichment: %w", err))
		return
	}

	s.finish(ctx, j.recordID, log)
}

// buildUpdates merges generator output into a single column map. Suggested
// tags only fill an empty set; frameworks and libraries union with what the
// owner supplied. Keywords are rederived from the merged state.
func buildUpdates(snippet *models.SnippetModel, description, summary, analysis ai.TextResult, tags, frameworks, libraries ai.ListResult, metrics quality.Metrics) map[string]interface{} {
	now := time.Now()

	mergedTags := snippet.Tags
	if len(mergedTags) == 0 {
		mergedTags = capSet(taxonomy.NormalizeSet(tags.Values), models.MaxTags)
	}
	mergedFrameworks := capSet(
		taxonomy.NormalizeSet(append(append([]string{}, snippet.Frameworks...), frameworks.Values...)),
		models.MaxFrameworks,
	)
	mergedLibraries := models.StringArray(
		taxonomy.NormalizeSet(append(append([]string{}, snippet.Libraries...), libraries.Values...)))

	confidence := description.Confidence
	if summary.Confidence < confidence {
		confidence = summary.Confidence
	}

	keywords := taxonomy.DeriveKeywords(snippet.Title, summary.Value,
		mergedTags, mergedFrameworks, snippet.Topics)

	return map[string]interface{}{
		"ai_description":          description.Value,
		"ai_summary":              summary.Value,
		"ai_generated_at":         now,
		"ai_confidence":           confidence,
		"summary":                 mergeSummary(snippet.Summary, summary),
		"notes":                   mergeNotes(snippet.Notes, analysis),
		"tags":                    mergedTags,
		"frameworks":              mergedFrameworks,
		"libraries":               mergedLibraries,
		"keywords":                models.StringArray(keywords),
		"quality_readability":     metrics.Readability,
		"quality_security":        metrics.Security,
		"quality_performance":     metrics.Performance,
		"quality_maintainability": metrics.Maintainability,
		"quality_overall":         metrics.Overall,
		"quality_last_analyzed":   now,
		"needs_analysis":          false,
	}
}

// summaryRuneLimit matches the cap enforced on owner-written summaries.
const summaryRuneLimit = 280

// mergeSummary keeps an owner-written summary untouched; the generated one
// only lands in an empty field, never degraded, and clipped to the cap the
// owner-facing validation enforces. The full value stays in ai_summary.
func mergeSummary(existing string, summary ai.TextResult) string {
	if existing != "" || summary.Degraded {
		return existing
	}
	if r := []rune(summary.Value); len(r) > summaryRuneLimit {
		return string(r[:summaryRuneLimit])
	}
	return summary.Value
}

// mergeNotes keeps owner-written notes untouched; the analysis only lands in
// an empty notes field, and degraded analysis never overwrites anything.
func mergeNotes(existing string, analysis ai.TextResult) string {
	if existing != "" || analysis.Degraded {
		return existing
	}
	return analysis.Value
}

func capSet(values []string, max int) models.StringArray {
	if len(values) > max {
		values = values[:max]
	}
	return models.StringArray(values)
}

func (s *Service) finish(ctx context.Context, recordID string, log *zap.Logger) {
	if err := s.records.SetStatus(ctx, recordID, taskqueue.StatusDone, ""); err != nil {
		log.Warn("mark record done failed", zap.Error(err))
		return
	}
	log.Info("enrichment completed")
}

func (s *Service) fail(ctx context.Context, recordID string, log *zap.Logger, cause error) {
	log.Error("enrichment failed", zap.Error(cause))
	if err := s.records.SetStatus(ctx, recordID, taskqueue.StatusFailed, cause.Error()); err != nil {
		log.Warn("mark record failed failed", zap.Error(err))
	}
}

// GetRecord returns a record by ID.
func (s *Service) GetRecord(ctx context.Context, id string) (*taskqueue.Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotFound
	}
	return rec, nil
}

// GetRecordForSnippet returns the record tracking the snippet, if any.
func (s *Service) GetRecordForSnippet(ctx context.Context, snippetID string) (*taskqueue.Record, error) {
	if _, err := uuid.Parse(snippetID); err != nil {
		return nil, apperr.ErrMalformedID
	}
	rec, err := s.records.GetBySnippet(ctx, snippetID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotFound
	}
	return rec, nil
}

// ListRecords returns records newest first, optionally filtered by status.
func (s *Service) ListRecords(ctx context.Context, page, size int, status *taskqueue.Status) ([]*taskqueue.Record, int64, error) {
	return s.records.List(ctx, page, size, status)
}
