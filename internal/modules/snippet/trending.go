package snippet

import (
	"context"
	"time"

	"github.com/snipvault/core/internal/models"
	"github.com/snipvault/core/internal/pkg/apperr"
	"github.com/snipvault/core/internal/pkg/taxonomy"
)

// timeframeDays maps the accepted trending windows to day offsets.
var timeframeDays = map[string]int{
	"24h": 1,
	"7d":  7,
	"30d": 30,
}

const (
	defaultTrendingLimit = 10
	maxTrendingLimit     = 100
)

// TrendingEntry is one ranked snippet with its score and the owner's
// display name denormalized in.
type TrendingEntry struct {
	snippetResponse
	Score     int    `json:"score"`
	OwnerName string `json:"owner_name"`
}

// Trending ranks public snippets created within the window by the weighted
// engagement score views + 3*copied + 5*stars. The counters are lifetime
// totals, not deltas within the window; an older snippet that barely clears
// the window ranks with its full history.
func (s *Service) Trending(ctx context.Context, timeframe, category, language string, limit int) ([]TrendingEntry, error) {
	if timeframe == "" {
		timeframe = "24h"
	}
	days, ok := timeframeDays[timeframe]
	if !ok {
		return nil, apperr.Validation("timeframe", "must be 24h, 7d or 30d")
	}
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	tx := s.db.WithContext(ctx).Model(&models.SnippetModel{}).
		Where("visibility = ?", models.VisibilityPublic).
		Where("created_at >= ?", cutoff)
	if category != "" {
		tx = tx.Where("category = ?", taxonomy.Slugify(category))
	}
	if language != "" {
		tx = tx.Where("language = ?", taxonomy.Slugify(language))
	}

	var items []models.SnippetModel
	if err := tx.Order("(views + copied * 3 + stars * 5) DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	names, err := s.ownerNames(ctx, items)
	if err != nil {
		return nil, err
	}

	entries := make([]TrendingEntry, len(items))
	for i := range items {
		entries[i] = TrendingEntry{
			snippetResponse: toResponse(&items[i]),
			Score:           items[i].TrendingScore(),
			OwnerName:       names[items[i].OwnerID],
		}
	}
	return entries, nil
}

func (s *Service) ownerNames(ctx context.Context, items []models.SnippetModel) (map[string]string, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := items[i].OwnerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var owners []models.UserModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&owners).Error; err != nil {
		return nil, err
	}

	names := make(map[string]string, len(owners))
	for i := range owners {
		name := owners[i].Name
		if name == "" {
			name = owners[i].Username
		}
		names[owners[i].ID] = name
	}
	return names, nil
}
