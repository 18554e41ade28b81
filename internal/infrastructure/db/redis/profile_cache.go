package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devconnector/directory-api/internal/core/ports"
)

const (
	defaultProfileTTL = 5 * time.Minute
	// generationTTL bounds how long an idle user's generation counter lives.
	// A read that outlasts it could refill a stale view, so keep it far above
	// any request deadline.
	generationTTL = 24 * time.Hour
)

var errStaleGeneration = errors.New("profile cache generation moved")

// ProfileCache keeps rendered public profiles in Redis.
// Key format: profile:user:<user_id>, generation: profile:gen:<user_id>
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a ProfileCache whose entries expire after ttl.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{client: client, ttl: ttl}
}

// Get returns the cached view for userID, nil on a miss, together with the
// user's current generation.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*ports.ProfileView, int64, error) {
	vals, err := c.client.MGet(ctx, c.key(userID), c.genKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("profile cache get: %w", err)
	}

	var gen int64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("profile cache generation: %w", err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var view ports.ProfileView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, 0, fmt.Errorf("profile cache decode: %w", err)
	}
	view.UserID = view.User.ID
	return &view, gen, nil
}

// Set stores view under its owner's key, unless an Invalidate has run since
// the Get that returned gen. A skipped write is not an error.
func (c *ProfileCache) Set(ctx context.Context, view *ports.ProfileView, gen int64) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("profile cache encode: %w", err)
	}

	userID := view.User.ID
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.genKey(userID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(userID), raw, c.ttl)
			return nil
		})
		return err
	}, c.genKey(userID))

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("profile cache set: %w", err)
	}
}

// Invalidate drops the entry for userID and advances its generation.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(userID))
		pipe.Incr(ctx, c.genKey(userID))
		pipe.Expire(ctx, c.genKey(userID), generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("profile cache invalidate: %w", err)
	}
	return nil
}

func (c *ProfileCache) key(userID string) string {
	return "profile:user:" + userID
}

func (c *ProfileCache) genKey(userID string) string {
	return "profile:gen:" + userID
}
