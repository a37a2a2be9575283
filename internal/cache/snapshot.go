package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

const snapshotKeyPrefix = "stats:"

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// SnapshotKey returns a deterministic cache key for a filter.
// Branch order and the zone offset of the bounds do not affect the key.
func SnapshotKey(filter model.StatisticsFilter) string {
	branches := append([]string(nil), filter.BranchIDs...)
	sort.Strings(branches)

	parts := []string{
		"client=" + filter.ClientID,
		"branches=" + strings.Join(branches, ","),
		"from=" + formatBound(filter.From),
		"to=" + formatBound(filter.To),
		"tz=" + filter.TimeZone,
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return snapshotKeyPrefix + hex.EncodeToString(sum[:])
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// GetSnapshot retrieves a cached snapshot.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetSnapshot(ctx context.Context, key string) (*model.Snapshot, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}

	return &snap, nil
}

// SetSnapshot stores a snapshot for ttl.
func (c *Cache) SetSnapshot(ctx context.Context, key string, snap *model.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}

	return nil
}

// DeleteSnapshot removes a cached snapshot.
func (c *Cache) DeleteSnapshot(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot from cache: %w", err)
	}
	return nil
}
