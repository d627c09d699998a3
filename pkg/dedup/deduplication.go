package dedup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefixes used by the crawler.
const (
	PrefixVideo   = "video"
	PrefixComment = "comment"
	PrefixJob     = "job"
)

// Deduplicator keeps a TTL'd seen-set in Redis under argus:<prefix>:<id>.
type Deduplicator struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDeduplicator wraps rdb. If ttlHours is 0, defaults to 48 hours.
func NewDeduplicator(rdb *redis.Client, ttlHours int) *Deduplicator {
	if ttlHours <= 0 {
		ttlHours = 48
	}
	return &Deduplicator{
		rdb: rdb,
		ttl: time.Duration(ttlHours) * time.Hour,
	}
}

func key(prefix, id string) string {
	return fmt.Sprintf("argus:%s:%s", prefix, id)
}

// MarkAsSeen marks id as seen under prefix, refreshing the TTL.
func (d *Deduplicator) MarkAsSeen(ctx context.Context, prefix, id string) error {
	return d.rdb.Set(ctx, key(prefix, id), "1", d.ttl).Err()
}

// MarkIfNew atomically marks id and reports whether it was unseen before.
func (d *Deduplicator) MarkIfNew(ctx context.Context, prefix, id string) (bool, error) {
	return d.rdb.SetNX(ctx, key(prefix, id), "1", d.ttl).Result()
}

// Forget drops id so the next MarkIfNew succeeds again.
func (d *Deduplicator) Forget(ctx context.Context, prefix, id string) error {
	return d.rdb.Del(ctx, key(prefix, id)).Err()
}

// CheckIfProcessed returns true if id exists under prefix.
func (d *Deduplicator) CheckIfProcessed(ctx context.Context, prefix, id string) (bool, error) {
	exists, err := d.rdb.Exists(ctx, key(prefix, id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Fingerprint hashes the given parts into a stable hex id.
func Fingerprint(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
