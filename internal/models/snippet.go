package models

import "time"

// Visibility controls who can see a snippet.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityUnlisted:
		return true
	}
	return false
}

// Taxonomy size caps, enforced on the post-normalization sets.
const (
	MaxTags       = 20
	MaxFrameworks = 15
	MaxTopics     = 10
)

// AIMetadata holds generator output attached to a snippet.
type AIMetadata struct {
	Description string     `json:"description"  gorm:"column:ai_description;type:text"`
	Summary     string     `json:"summary"      gorm:"column:ai_summary;type:text"`
	GeneratedAt *time.Time `json:"generated_at" gorm:"column:ai_generated_at"`
	Confidence  float64    `json:"confidence"   gorm:"column:ai_confidence"`
}

// QualityMetrics holds heuristic scores, each in [0,10].
type QualityMetrics struct {
	Readability     int        `json:"readability"     gorm:"column:quality_readability"`
	Security        int        `json:"security"        gorm:"column:quality_security"`
	Performance     int        `json:"performance"     gorm:"column:quality_performance"`
	Maintainability int        `json:"maintainability" gorm:"column:quality_maintainability"`
	Overall         int        `json:"overall"         gorm:"column:quality_overall"`
	LastAnalyzed    *time.Time `json:"last_analyzed"   gorm:"column:quality_last_analyzed"`
}

// Encryption is an opaque ciphertext bundle supplied by the client. Its
// presence forces the snippet private.
type Encryption struct {
	EncryptedContent string `json:"encrypted_content"`
	IV               string `json:"iv,omitempty"`
	Salt             string `json:"salt,omitempty"`
	Algorithm        string `json:"algorithm,omitempty"`
}

// SnippetModel stores one piece of submitted code plus its taxonomy,
// visibility, engagement counters and derived metadata.
type SnippetModel struct {
	Base
	OwnerID string `json:"owner_id" gorm:"type:char(36);index;not null"`

	Title   string `json:"title"   gorm:"not null"`
	Content string `json:"content" gorm:"type:longtext;not null"`

	Language           string  `json:"language"            gorm:"index;not null"`
	LanguageConfidence float64 `json:"language_confidence"`

	Summary       string `json:"summary"`
	Documentation string `json:"documentation" gorm:"type:longtext"`
	Notes         string `json:"notes"         gorm:"type:text"`

	Tags       StringArray `json:"tags"       gorm:"type:longtext"`
	Frameworks StringArray `json:"frameworks" gorm:"type:longtext"`
	Topics     StringArray `json:"topics"     gorm:"type:longtext"`
	Libraries  StringArray `json:"libraries"  gorm:"type:longtext"`
	Keywords   StringArray `json:"keywords"   gorm:"type:longtext"`

	Category   string `json:"category"   gorm:"index"`
	Domain     string `json:"domain"     gorm:"index"`
	Complexity string `json:"complexity" gorm:"index"`

	Visibility Visibility `json:"visibility"  gorm:"index;default:private"`
	Pinned     bool       `json:"pinned"      gorm:"default:false"`
	IsArchived bool       `json:"is_archived" gorm:"default:false"`

	// Lifetime engagement counters.
	Views          int `json:"views"           gorm:"default:0"`
	Copied         int `json:"copied"          gorm:"default:0"`
	Stars          int `json:"stars"           gorm:"default:0"`
	FavoritesCount int `json:"favorites_count" gorm:"default:0"`

	AIMetadata     AIMetadata     `json:"ai_metadata"     gorm:"embedded"`
	QualityMetrics QualityMetrics `json:"quality_metrics" gorm:"embedded"`

	// True from creation until the enrichment pass completes once. A crash
	// mid-enrichment leaves it true forever; operations watch this flag.
	NeedsAnalysis bool `json:"needs_analysis" gorm:"default:true"`

	Encryption *Encryption `json:"encryption,omitempty" gorm:"type:longtext;serializer:json"`
}

func (SnippetModel) TableName() string { return "snippets" }

// Encrypted reports whether the snippet carries a ciphertext bundle.
func (s *SnippetModel) Encrypted() bool {
	return s.Encryption != nil && s.Encryption.EncryptedContent != ""
}

// TrendingScore is the weighted engagement sum used by the trending feed.
// Counters are lifetime totals, not deltas within the trending window.
func (s *SnippetModel) TrendingScore() int {
	return s.Views + s.Copied*3 + s.Stars*5
}
