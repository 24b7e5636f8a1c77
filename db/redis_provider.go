package db

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/jonafarm/market/logx"
	"github.com/redis/go-redis/v9"
)

// chainBlockPrefix must stay in sync with the block key prefix of the chain
// provider store.
const chainBlockPrefix = "chain:blk:"

const scanPageSize = 512

// RedisProvider implements DatabaseProvider for Redis
type RedisProvider struct {
	client *redis.Client
	ctx    context.Context
}

// convertKeyToHumanReadable renders binary block indexes as decimal so the
// keyspace is browsable with redis-cli.
func convertKeyToHumanReadable(key []byte) string {
	keyStr := string(key)

	if strings.HasPrefix(keyStr, chainBlockPrefix) {
		binaryPart := key[len(chainBlockPrefix):]
		if len(binaryPart) == 8 {
			index := binary.BigEndian.Uint64(binaryPart)
			return fmt.Sprintf("%s%d", chainBlockPrefix, index)
		}
	}

	return keyStr
}

// NewRedisProvider connects to address and selects database.
func NewRedisProvider(address string, database int) (*RedisProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   database,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", address, err)
	}
	logx.Info("REDIS", fmt.Sprintf("Connected | addr=%s | db=%d", address, database))

	return &RedisProvider{
		client: client,
		ctx:    ctx,
	}, nil
}

func (p *RedisProvider) Get(key []byte) ([]byte, error) {
	value, err := p.client.Get(p.ctx, convertKeyToHumanReadable(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

// GetBatch fetches all keys with one MGET
func (p *RedisProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = convertKeyToHumanReadable(k)
	}
	values, err := p.client.MGet(p.ctx, redisKeys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		result[string(keys[i])] = []byte(s)
	}
	return result, nil
}

func (p *RedisProvider) Put(key, value []byte) error {
	redisKey := convertKeyToHumanReadable(key)
	logx.Debug("REDIS", fmt.Sprintf("Put key: %s value length: %d", redisKey, len(value)))
	return p.client.Set(p.ctx, redisKey, value, 0).Err()
}

func (p *RedisProvider) Has(key []byte) (bool, error) {
	count, err := p.client.Exists(p.ctx, convertKeyToHumanReadable(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountPrefix walks the keyspace with SCAN so the server is never blocked
// by a KEYS call.
func (p *RedisProvider) CountPrefix(prefix []byte) (uint64, error) {
	pattern := convertKeyToHumanReadable(prefix) + "*"

	var (
		cursor uint64
		n      uint64
	)
	for {
		keys, next, err := p.client.Scan(p.ctx, cursor, pattern, scanPageSize).Result()
		if err != nil {
			return 0, err
		}
		n += uint64(len(keys))
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// Batch returns a MULTI/EXEC pipeline so the writes apply atomically
func (p *RedisProvider) Batch() DatabaseBatch {
	return &RedisBatch{
		client: p.client,
		ctx:    p.ctx,
		pipe:   p.client.TxPipeline(),
	}
}

// RedisBatch implements DatabaseBatch for Redis
type RedisBatch struct {
	client *redis.Client
	ctx    context.Context
	pipe   redis.Pipeliner
	puts   int
}

func (b *RedisBatch) Put(key, value []byte) {
	b.pipe.Set(b.ctx, convertKeyToHumanReadable(key), value, 0)
	b.puts++
}

func (b *RedisBatch) Len() int {
	return b.puts
}

func (b *RedisBatch) Write() error {
	_, err := b.pipe.Exec(b.ctx)
	return err
}

func (b *RedisBatch) Reset() {
	b.pipe.Discard()
	b.pipe = b.client.TxPipeline()
	b.puts = 0
}

func (b *RedisBatch) Close() error {
	b.pipe.Discard()
	return nil
}
