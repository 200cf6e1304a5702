package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside returns the value cached under key, or calls load and caches its
// result for ttl. Cache failures fall through to load.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if client == nil {
		return load(ctx)
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return cached, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if payload, merr := json.Marshal(value); merr == nil {
		if serr := client.Set(ctx, key, payload, ttl).Err(); serr != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", serr)
		}
	}
	return value, nil
}
