package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker remembers which notification mails were already delivered.
// Key format: mail:<kind>:<email>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// IsDuplicate reports whether a mail of this kind was already sent to email.
func (d *DedupChecker) IsDuplicate(ctx context.Context, kind, email string) (bool, error) {
	n, err := d.client.Exists(ctx, key(kind, email)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the delivery. The key expires after the checker's TTL.
func (d *DedupChecker) Mark(ctx context.Context, kind, email string) error {
	return d.client.Set(ctx, key(kind, email), "1", d.ttl).Err()
}

func key(kind, email string) string {
	return fmt.Sprintf("mail:%s:%s", kind, email)
}
