package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// Store implements ports.TraceStore using Redis. Traces are kept as JSON
// values and indexed in a sorted set scored by creation time, which makes
// List a single ZRANGE.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored traces.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for traces.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "espalier:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "trace:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "traces"
}

// Save persists the trace and adds it to the creation-time index.
func (s *Store) Save(ctx context.Context, tr *trace.Trace) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(tr.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		// Millisecond scores stay exact in a float64; nanoseconds would not.
		Score:  float64(tr.CreatedAt.UnixMilli()),
		Member: tr.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a trace by id.
func (s *Store) Load(ctx context.Context, id string) (*trace.Trace, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, ports.ErrTraceNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var tr trace.Trace
	if err := json.Unmarshal([]byte(val), &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace: %w", err)
	}
	return &tr, nil
}

// Delete removes the trace and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns trace ids oldest first. With a TTL configured the values
// expire on their own, so the index is pruned lazily here: anything created
// before now-ttl is gone from Redis already and gets dropped from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		cutoff := time.Now().Add(-s.ttl).UnixMilli()
		err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", strconv.FormatInt(cutoff, 10)).Err()
		if err != nil {
			return nil, fmt.Errorf("failed to prune expired traces: %w", err)
		}
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
