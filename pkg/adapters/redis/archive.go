package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Archive implements ports.Archive over a single Redis hash.
type Archive struct {
	client *backend.Client
	key    string
}

// NewArchive creates an archive reading the hash at key.
func NewArchive(client *backend.Client, key string) *Archive {
	return &Archive{client: client, key: key}
}

// ReadEntry returns the hash field for name.
func (a *Archive) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	data, err := a.client.HGet(ctx, a.key, name).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("failed to read entry %s from redis: %w", name, err)
	}
	return data, nil
}

// HasEntry reports whether the hash has a field for name.
func (a *Archive) HasEntry(ctx context.Context, name string) (bool, error) {
	ok, err := a.client.HExists(ctx, a.key, name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up entry %s in redis: %w", name, err)
	}
	return ok, nil
}

// ListEntries returns all field names, sorted.
func (a *Archive) ListEntries(ctx context.Context) ([]string, error) {
	names, err := a.client.HKeys(ctx, a.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries in redis: %w", err)
	}
	slices.Sort(names)
	return names, nil
}
