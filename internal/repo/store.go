// Package repo implements the persistence layer for the leaderboard, backed
// by Redis. This file contains client bootstrapping, key namespacing, and the
// error values shared by the rest of the package.
//
// Key layout (every key is prefixed with the configured namespace):
//
//	<ns>:board                 ZSET  member=username score=composite rank key
//	<ns>:detail:<username>     HASH  username, score, elapsedMs, updatedAt
//	<ns>:idem:<scope>:<key>    STRING (JSON, with TTL) recorded submit outcome
//
// A nil *Store is usable: every method returns ErrNotConfigured. This lets the
// server start without REDIS_URL and report the problem per request.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/tbourn/lamu-leaderboard/internal/config"
)

var (
	// ErrNotConfigured is returned when no store connection URL was provided.
	ErrNotConfigured = errors.New("REDIS_URL is not set")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates that a record with the same identity already exists.
	ErrDuplicate = errors.New("duplicate")
)

// Store is the Redis-backed ranking store. It is safe for concurrent use and
// is meant to be created once per process and shared by all handlers.
type Store struct {
	rdb    *redis.Client
	ns     string
	submit *redis.Script
}

// Option customizes Open.
type Option func(*redis.Client) error

// WithTracing instruments the client with OpenTelemetry spans per command.
func WithTracing() Option {
	return func(rdb *redis.Client) error {
		return redisotel.InstrumentTracing(rdb)
	}
}

// Open builds a Store from cfg. It does not contact the server; call Ping to
// verify connectivity. A rediss:// URL enables TLS.
func Open(cfg config.RedisConfig, opts ...Option) (*Store, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrNotConfigured
	}
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.Timeout > 0 {
		ro.DialTimeout = cfg.Timeout
		ro.ReadTimeout = cfg.Timeout
		ro.WriteTimeout = cfg.Timeout
	}
	if cfg.PoolSize > 0 {
		ro.PoolSize = cfg.PoolSize
	}

	rdb := redis.NewClient(ro)
	for _, o := range opts {
		if err := o(rdb); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("instrument redis client: %w", err)
		}
	}
	return New(rdb, cfg.Namespace), nil
}

// New wraps an existing client. An empty namespace falls back to "lamu".
func New(rdb *redis.Client, namespace string) *Store {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = "lamu"
	}
	return &Store{
		rdb:    rdb,
		ns:     ns,
		submit: redis.NewScript(submitScript),
	}
}

// Namespace returns the key prefix in use.
func (s *Store) Namespace() string {
	if s == nil {
		return ""
	}
	return s.ns
}

// Ping checks connectivity to the server.
func (s *Store) Ping(ctx context.Context) error {
	if !s.ready() {
		return ErrNotConfigured
	}
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if !s.ready() {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) ready() bool { return s != nil && s.rdb != nil }

// key namespaces k as "<ns>:<k>".
func (s *Store) key(k string) string { return s.ns + ":" + k }

func (s *Store) boardKey() string { return s.key("board") }

func (s *Store) detailKey(username string) string { return s.key("detail:" + username) }

func (s *Store) idemKey(scope, key string) string { return s.key("idem:" + scope + ":" + key) }
