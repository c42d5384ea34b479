// Package repo implements the persistence layer for the leaderboard, backed
// by Redis. This file provides repository helpers for the Idempotency model
// used to implement safe-retry semantics for score submission.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
)

// GetIdempotency returns a non-expired record or ErrNotFound.
func (s *Store) GetIdempotency(ctx context.Context, scope, key string, now time.Time) (rec *domain.Idempotency, err error) {
	if !s.ready() {
		return nil, ErrNotConfigured
	}
	if key == "" {
		return nil, ErrNotFound
	}
	defer observe("idem_get", time.Now(), &err)

	raw, err := s.rdb.Get(ctx, s.idemKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var out domain.Idempotency
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	// Redis expiry is second-granular; honor the recorded deadline too.
	if out.Expired(now) {
		return nil, ErrNotFound
	}
	return &out, nil
}

// CreateIdempotency stores the outcome of a submission under (scope, key) for
// ttl. It returns ErrDuplicate when a record already exists.
func (s *Store) CreateIdempotency(ctx context.Context, scope, key string, updated bool, status int, ttl time.Duration) (rec *domain.Idempotency, err error) {
	if !s.ready() {
		return nil, ErrNotConfigured
	}
	defer observe("idem_create", time.Now(), &err)

	now := time.Now().UTC()
	rec = &domain.Idempotency{
		Scope:     scope,
		Key:       key,
		Updated:   updated,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	ok, err := s.rdb.SetNX(ctx, s.idemKey(scope, key), raw, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDuplicate
	}
	return rec, nil
}
