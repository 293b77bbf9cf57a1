// Package snippet implements the vault's core entity: creation with
// normalization and classification, owner-gated mutation, authorization-aware
// search with facets, and the trending feed.
package snippet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/modules/classifier"
	"github.com/snipvault/core/internal/pkg/apperr"
	"github.com/snipvault/core/internal/pkg/taxonomy"
)

const (
	minTitleLen   = 3
	maxTitleLen   = 140
	maxSummaryLen = 280
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create validates, normalizes and persists a new snippet for ownerID. The
// write is all-or-nothing: any validation failure rejects it whole.
func (s *Service) Create(ctx context.Context, ownerID string, dto *CreateSnippetDTO) (*models.SnippetModel, error) {
	var ve apperr.ValidationError

	title := strings.TrimSpace(dto.Title)
	if n := len([]rune(title)); n < minTitleLen || n > maxTitleLen {
		ve.Fields = append(ve.Fields, apperr.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("must be %d-%d characters", minTitleLen, maxTitleLen),
		})
	}
	if strings.TrimSpace(dto.Content) == "" {
		ve.Fields = append(ve.Fields, apperr.FieldError{Field: "content", Message: "must not be empty"})
	}
	if len([]rune(dto.Summary)) > maxSummaryLen {
		ve.Fields = append(ve.Fields, apperr.FieldError{
			Field:   "summary",
			Message: fmt.Sprintf("must be at most %d characters", maxSummaryLen),
		})
	}

	visibility := models.VisibilityPrivate
	if dto.Visibility != "" {
		visibility = models.Visibility(dto.Visibility)
		if !visibility.Valid() {
			ve.Fields = append(ve.Fields, apperr.FieldError{Field: "visibility", Message: "must be private, public or unlisted"})
		}
	}

	tags := taxonomy.NormalizeSet(dto.Tags)
	frameworks := taxonomy.NormalizeSet(dto.Frameworks)
	topics := taxonomy.NormalizeSet(dto.Topics)
	libraries := taxonomy.NormalizeSet(dto.Libraries)
	appendCapErrors(&ve, tags, frameworks, topics)

	if len(ve.Fields) > 0 {
		return nil, &ve
	}

	language := taxonomy.Slugify(dto.Language)
	confidence := 1.0
	if language == "" {
		result := classifier.Classify(dto.Content, dto.Filename)
		language = result.Language
		confidence = result.Confidence
	}

	item := models.SnippetModel{
		OwnerID:            ownerID,
		Title:              title,
		Content:            dto.Content,
		Language:           language,
		LanguageConfidence: confidence,
		Summary:            dto.Summary,
		Documentation:      dto.Documentation,
		Notes:              dto.Notes,
		Tags:               models.StringArray(tags),
		Frameworks:         models.StringArray(frameworks),
		Topics:             models.StringArray(topics),
		Libraries:          models.StringArray(libraries),
		Category:           taxonomy.Slugify(dto.Category),
		Domain:             taxonomy.Slugify(dto.Domain),
		Complexity:         taxonomy.Slugify(dto.Complexity),
		Visibility:         visibility,
		Pinned:             dto.Pinned,
		Encryption:         dto.Encryption,
		NeedsAnalysis:      true,
	}
	coerceVisibility(&item)
	item.Keywords = models.StringArray(taxonomy.DeriveKeywords(item.Title, item.Summary,
		item.Tags, item.Frameworks, item.Topics))

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies an owner edit. Only the owner may mutate; ownership itself
// is never reassigned.
func (s *Service) Update(ctx context.Context, id, ownerID string, dto *UpdateSnippetDTO) (*models.SnippetModel, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, apperr.ErrAccessDenied
	}

	var ve apperr.ValidationError

	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if n := len([]rune(title)); n < minTitleLen || n > maxTitleLen {
			ve.Fields = append(ve.Fields, apperr.FieldError{
				Field:   "title",
				Message: fmt.Sprintf("must be %d-%d characters", minTitleLen, maxTitleLen),
			})
		}
		item.Title = title
	}
	if dto.Content != nil {
		if strings.TrimSpace(*dto.Content) == "" {
			ve.Fields = append(ve.Fields, apperr.FieldError{Field: "content", Message: "must not be empty"})
		}
		item.Content = *dto.Content
	}
	if dto.Summary != nil {
		if len([]rune(*dto.Summary)) > maxSummaryLen {
			ve.Fields = append(ve.Fields, apperr.FieldError{
				Field:   "summary",
				Message: fmt.Sprintf("must be at most %d characters", maxSummaryLen),
			})
		}
		item.Summary = *dto.Summary
	}
	if dto.Language != nil {
		if slug := taxonomy.Slugify(*dto.Language); slug != "" {
			item.Language = slug
			item.LanguageConfidence = 1.0
		}
	}
	if dto.Tags != nil {
		item.Tags = models.StringArray(taxonomy.NormalizeSet(*dto.Tags))
	}
	if dto.Frameworks != nil {
		item.Frameworks = models.StringArray(taxonomy.NormalizeSet(*dto.Frameworks))
	}
	if dto.Topics != nil {
		item.Topics = models.StringArray(taxonomy.NormalizeSet(*dto.Topics))
	}
	if dto.Libraries != nil {
		item.Libraries = models.StringArray(taxonomy.NormalizeSet(*dto.Libraries))
	}
	appendCapErrors(&ve, item.Tags, item.Frameworks, item.Topics)

	if dto.Category != nil {
		item.Category = taxonomy.Slugify(*dto.Category)
	}
	if dto.Domain != nil {
		item.Domain = taxonomy.Slugify(*dto.Domain)
	}
	if dto.Complexity != nil {
		item.Complexity = taxonomy.Slugify(*dto.Complexity)
	}
	if dto.Documentation != nil {
		item.Documentation = *dto.Documentation
	}
	if dto.Notes != nil {
		item.Notes = *dto.Notes
	}
	if dto.Visibility != nil {
		v := models.Visibility(*dto.Visibility)
		if !v.Valid() {
			ve.Fields = append(ve.Fields, apperr.FieldError{Field: "visibility", Message: "must be private, public or unlisted"})
		}
		item.Visibility = v
	}
	if dto.Pinned != nil {
		item.Pinned = *dto.Pinned
	}
	if dto.IsArchived != nil {
		item.IsArchived = *dto.IsArchived
	}
	if dto.Encryption != nil {
		item.Encryption = dto.Encryption
	}

	if len(ve.Fields) > 0 {
		return nil, &ve
	}

	coerceVisibility(item)
	item.Keywords = models.StringArray(taxonomy.DeriveKeywords(item.Title, item.Summary,
		item.Tags, item.Frameworks, item.Topics))

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns a snippet the viewer is allowed to see. Private snippets are
// owner-only; public and unlisted ones resolve for anyone holding the id.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*models.SnippetModel, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Visibility == models.VisibilityPrivate && item.OwnerID != viewerID {
		return nil, apperr.ErrAccessDenied
	}
	return item, nil
}

// Delete removes a snippet. Owner-only.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	item, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return apperr.ErrAccessDenied
	}
	return s.db.WithContext(ctx).Delete(&models.SnippetModel{}, "id = ?", id).Error
}

// IncrementViews bumps the lifetime view counter.
func (s *Service) IncrementViews(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// IncrementCopied bumps the lifetime copy counter.
func (s *Service) IncrementCopied(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("id = ?", id).
		UpdateColumn("copied", gorm.Expr("copied + 1")).Error
}

// Star bumps the star counter for a snippet the viewer can see.
func (s *Service) Star(ctx context.Context, id, viewerID string) error {
	if _, err := s.Get(ctx, id, viewerID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("id = ?", id).
		UpdateColumn("stars", gorm.Expr("stars + 1")).Error
}

// Unstar lowers the star counter, floored at zero.
func (s *Service) Unstar(ctx context.Context, id, viewerID string) error {
	if _, err := s.Get(ctx, id, viewerID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("id = ? AND stars > 0", id).
		UpdateColumn("stars", gorm.Expr("stars - 1")).Error
}

func (s *Service) load(ctx context.Context, id string) (*models.SnippetModel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrMalformedID
	}
	var item models.SnippetModel
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// coerceVisibility enforces the encryption rule: a ciphertext-bearing
// snippet cannot be public and is silently made private, with no error
// raised to the caller. Unlisted stays unlisted.
func coerceVisibility(item *models.SnippetModel) {
	if item.Encrypted() && item.Visibility == models.VisibilityPublic {
		item.Visibility = models.VisibilityPrivate
	}
}

// appendCapErrors checks the post-normalization set sizes. Oversized sets
// reject the write; they are never truncated.
func appendCapErrors(ve *apperr.ValidationError, tags, frameworks, topics []string) {
	if len(tags) > models.MaxTags {
		ve.Fields = append(ve.Fields, apperr.FieldError{
			Field:   "tags",
			Message: fmt.Sprintf("at most %d tags allowed", models.MaxTags),
		})
	}
	if len(frameworks) > models.MaxFrameworks {
		ve.Fields = append(ve.Fields, apperr.FieldError{
			Field:   "frameworks",
			Message: fmt.Sprintf("at most %d frameworks allowed", models.MaxFrameworks),
		})
	}
	if len(topics) > models.MaxTopics {
		ve.Fields = append(ve.Fields, apperr.FieldError{
			Field:   "topics",
			Message: fmt.Sprintf("at most %d topics allowed", models.MaxTopics),
		})
	}
}
