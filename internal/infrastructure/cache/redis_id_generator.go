package cache

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultSequencePrefix = "pos:sequence:"

// RedisIDGenerator hands out identifiers with INCR. Redis persistence must be
// enabled for identifiers to survive a restart without reuse.
type RedisIDGenerator struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIDGenerator creates a generator over an existing client
func NewRedisIDGenerator(client redis.UniversalClient, keyPrefix string) *RedisIDGenerator {
	if keyPrefix == "" {
		keyPrefix = defaultSequencePrefix
	}
	return &RedisIDGenerator{client: client, keyPrefix: keyPrefix}
}

// NextID increments the sequence counter and returns the new value
func (g *RedisIDGenerator) NextID(ctx context.Context, sequence string) (int64, error) {
	id, err := g.client.Incr(ctx, g.keyPrefix+sequence).Result()
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	return id, nil
}

var _ shared.IDGenerator = (*RedisIDGenerator)(nil)
