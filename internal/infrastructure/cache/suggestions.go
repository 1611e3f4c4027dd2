// Package cache хранит посчитанные подсказки в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "tasks:suggest:"

// Stats - счётчики обращений к кэшу.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

// SuggestionCache хранит одну запись на пару (окно часов, limit). Любое изменение задач сбрасывает все записи.
type SuggestionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

func NewSuggestionCache(client *redis.Client, prefix string, ttl time.Duration) *SuggestionCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SuggestionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *SuggestionCache) key(limit int, at time.Time) string {
	return c.prefix + strconv.FormatInt(at.Unix(), 10) + ":" + strconv.Itoa(limit)
}

// Get возвращает подсказки, посчитанные для limit на начало окна at; false при промахе.
func (c *SuggestionCache) Get(ctx context.Context, limit int, at time.Time) ([]entity.Suggestion, bool, error) {
	data, err := c.client.Get(ctx, c.key(limit, at)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&c.stats.Misses, 1)
			return nil, false, nil
		}
		atomic.AddUint64(&c.stats.Errors, 1)
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var suggestions []entity.Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	atomic.AddUint64(&c.stats.Hits, 1)
	return suggestions, true, nil
}

func (c *SuggestionCache) Set(ctx context.Context, limit int, at time.Time, suggestions []entity.Suggestion) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.key(limit, at), data, c.ttl).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache set error: %w", err)
	}

	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

// Invalidate удаляет все ключи с префиксом кэша.
func (c *SuggestionCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	var deleted int

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			atomic.AddUint64(&c.stats.Errors, 1)
			return fmt.Errorf("cache scan error: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				atomic.AddUint64(&c.stats.Errors, 1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	atomic.AddUint64(&c.stats.Deletes, uint64(deleted))
	return nil
}

// Snapshot возвращает текущие значения счётчиков.
func (c *SuggestionCache) Snapshot() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.stats.Hits),
		Misses:  atomic.LoadUint64(&c.stats.Misses),
		Sets:    atomic.LoadUint64(&c.stats.Sets),
		Deletes: atomic.LoadUint64(&c.stats.Deletes),
		Errors:  atomic.LoadUint64(&c.stats.Errors),
	}
}

func (c *SuggestionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
