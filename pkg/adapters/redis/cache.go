package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Cache implements ports.DocumentCache using Redis.
// Each document is a hash (entry name -> bytes); a sorted set indexes ids by expiry.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for cached documents.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached documents.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: "strata:doc:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *Cache) key(id string) string {
	return c.prefix + id
}

func (c *Cache) indexKey() string {
	return c.prefix + "index"
}

// Put replaces the document hash and refreshes its index score.
func (c *Cache) Put(ctx context.Context, id string, entries map[string][]byte) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}
	fields := make(map[string]any, len(entries))
	for name, data := range entries {
		fields[name] = data
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(id))
	if len(fields) > 0 {
		pipe.HSet(ctx, c.key(id), fields)
	}
	if c.ttl > 0 {
		pipe.Expire(ctx, c.key(id), c.ttl)
	}

	// Score = Now + TTL. If TTL = 0, Score = far future.
	score := float64(time.Now().Add(c.ttl).Unix())
	if c.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{Score: score, Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache document in redis: %w", err)
	}
	return nil
}

// Archive returns a live view over the cached document hash.
func (c *Cache) Archive(ctx context.Context, id string) (ports.Archive, error) {
	n, err := c.client.Exists(ctx, c.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check document in redis: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return NewArchive(c.client, c.key(id)), nil
}

// Delete removes the document and its index entry.
func (c *Cache) Delete(ctx context.Context, id string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(id))
	pipe.ZRem(ctx, c.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns cached ids, pruning expired ones from the index first.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired documents: %w", err)
	}

	ids, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
