package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	redisc "github.com/snipvault/core/internal/pkg/redis"
)

// Status is the lifecycle state of an enrichment record.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is the durable trace of one snippet's enrichment pass, stored in
// Redis. A crash mid-run leaves it non-done, which together with the
// snippet's needs_analysis flag is the operational signal for lost work.
type Record struct {
	ID        string    `json:"id"`
	SnippetID string    `json:"snippet_id"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	keyPrefix = "sv:enrich:"
	keyIndex  = "sv:enrich:index"   // sorted set: score=created_at, member=record_id
	keyBySnip = "sv:enrich:snippet" // hash: snippet_id -> record_id
	recordTTL = 7 * 24 * time.Hour
)

// Service manages the Redis-backed enrichment records.
type Service struct {
	rc *redisc.Client
}

func NewService(rc *redisc.Client) *Service {
	return &Service{rc: rc}
}

func (s *Service) recordKey(id string) string { return keyPrefix + id }

// Create registers a queued record for the snippet. Enrichment is one-shot:
// if a record already exists for the snippet, the existing one is returned
// with created=false and no new work should be started. The snippet→record
// mapping is claimed with HSETNX so concurrent Creates for one snippet
// cannot both win.
func (s *Service) Create(ctx context.Context, snippetID string) (*Record, bool, error) {
	rec := &Record{
		ID:        uuid.New().String(),
		SnippetID: snippetID,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	claimed, err := s.rc.Raw().HSetNX(ctx, keyBySnip, snippetID, rec.ID).Result()
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		existing, err := s.GetBySnippet(ctx, snippetID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
		// The mapped record aged out of its TTL; take over the mapping.
		if err := s.rc.Raw().HSet(ctx, keyBySnip, snippetID, rec.ID).Err(); err != nil {
			return nil, false, err
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, false, err
	}

	pipe := s.rc.Raw().TxPipeline()
	pipe.Set(ctx, s.recordKey(rec.ID), data, recordTTL)
	pipe.ZAdd(ctx, keyIndex, redis.Z{
		Score:  float64(rec.CreatedAt.UnixMilli()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetByID retrieves a record by its ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Record, error) {
	data, err := s.rc.Raw().Get(ctx, s.recordKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	return &rec, json.Unmarshal(data, &rec)
}

// GetBySnippet retrieves the record tracking the given snippet, if any.
func (s *Service) GetBySnippet(ctx context.Context, snippetID string) (*Record, error) {
	id, err := s.rc.Raw().HGet(ctx, keyBySnip, snippetID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetStatus transitions a record and stores an optional error message.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, errMsg string) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("enrichment record not found")
	}

	rec.Status = status
	rec.Error = errMsg
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rc.Raw().Set(ctx, s.recordKey(id), data, recordTTL).Err()
}

// List returns records filtered by optional status, newest first.
func (s *Service) List(ctx context.Context, page, size int, status *Status) ([]*Record, int64, error) {
	ids, err := s.rc.Raw().ZRevRange(ctx, keyIndex, 0, -1).Result()
	if err != nil {
		return nil, 0, err
	}

	var records []*Record
	for _, id := range ids {
		rec, err := s.GetByID(ctx, id)
		if err != nil || rec == nil {
			continue
		}
		if status != nil && rec.Status != *status {
			continue
		}
		records = append(records, rec)
	}

	total := int64(len(records))
	start := (page - 1) * size
	end := start + size
	if start >= len(records) {
		return []*Record{}, total, nil
	}
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total, nil
}
