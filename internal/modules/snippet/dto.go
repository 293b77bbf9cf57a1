package snippet

import (
	"time"

	"github.com/snipvault/core/internal/models"
)

type CreateSnippetDTO struct {
	Title   string `json:"title"   binding:"required"`
	Content string `json:"content" binding:"required"`

	Language   string   `json:"language"`
	Tags       []string `json:"tags"`
	Frameworks []string `json:"frameworks"`
	Topics     []string `json:"topics"`
	Libraries  []string `json:"libraries"`

	Category   string `json:"category"`
	Domain     string `json:"domain"`
	Complexity string `json:"complexity"`

	Summary       string `json:"summary"`
	Documentation string `json:"documentation"`
	Notes         string `json:"notes"`

	Visibility string             `json:"visibility"`
	Pinned     bool               `json:"pinned"`
	Encryption *models.Encryption `json:"encryption"`

	// Filename is a classification hint only; it is not persisted.
	Filename string `json:"filename"`
}

type UpdateSnippetDTO struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`

	Language   *string   `json:"language"`
	Tags       *[]string `json:"tags"`
	Frameworks *[]string `json:"frameworks"`
	Topics     *[]string `json:"topics"`
	Libraries  *[]string `json:"libraries"`

	Category   *string `json:"category"`
	Domain     *string `json:"domain"`
	Complexity *string `json:"complexity"`

	Summary       *string `json:"summary"`
	Documentation *string `json:"documentation"`
	Notes         *string `json:"notes"`

	Visibility *string            `json:"visibility"`
	Pinned     *bool              `json:"pinned"`
	IsArchived *bool              `json:"is_archived"`
	Encryption *models.Encryption `json:"encryption"`
}

type snippetResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	Language           string  `json:"language"`
	LanguageConfidence float64 `json:"language_confidence"`

	Summary       string `json:"summary"`
	Documentation string `json:"documentation,omitempty"`
	Notes         string `json:"notes,omitempty"`

	Tags       []string `json:"tags"`
	Frameworks []string `json:"frameworks"`
	Topics     []string `json:"topics"`
	Libraries  []string `json:"libraries"`
	Keywords   []string `json:"keywords"`

	Category   string `json:"category,omitempty"`
	Domain     string `json:"domain,omitempty"`
	Complexity string `json:"complexity,omitempty"`

	Visibility models.Visibility `json:"visibility"`
	Pinned     bool              `json:"pinned"`
	IsArchived bool              `json:"is_archived"`

	Views          int `json:"views"`
	Copied         int `json:"copied"`
	Stars          int `json:"stars"`
	FavoritesCount int `json:"favorites_count"`

	AIMetadata     models.AIMetadata     `json:"ai_metadata"`
	QualityMetrics models.QualityMetrics `json:"quality_metrics"`
	NeedsAnalysis  bool                  `json:"needs_analysis"`

	Encryption *models.Encryption `json:"encryption,omitempty"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func toResponse(s *models.SnippetModel) snippetResponse {
	return snippetResponse{
		ID:                 s.ID,
		OwnerID:            s.OwnerID,
		Title:              s.Title,
		Content:            s.Content,
		Language:           s.Language,
		LanguageConfidence: s.LanguageConfidence,
		Summary:            s.Summary,
		Documentation:      s.Documentation,
		Notes:              s.Notes,
		Tags:               orEmpty(s.Tags),
		Frameworks:         orEmpty(s.Frameworks),
		Topics:             orEmpty(s.Topics),
		Libraries:          orEmpty(s.Libraries),
		Keywords:           orEmpty(s.Keywords),
		Category:           s.Category,
		Domain:             s.Domain,
		Complexity:         s.Complexity,
		Visibility:         s.Visibility,
		Pinned:             s.Pinned,
		IsArchived:         s.IsArchived,
		Views:              s.Views,
		Copied:             s.Copied,
		Stars:              s.Stars,
		FavoritesCount:     s.FavoritesCount,
		AIMetadata:         s.AIMetadata,
		QualityMetrics:     s.QualityMetrics,
		NeedsAnalysis:      s.NeedsAnalysis,
		Encryption:         s.Encryption,
		Created:            s.CreatedAt,
		Updated:            s.UpdatedAt,
	}
}

func orEmpty(a models.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return a
}
