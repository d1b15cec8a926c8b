// Package rooms кеширует справочник комнат и учреждений в Redis.
//
// Кеш работает по схеме read-through и не влияет на корректность:
// любая ошибка Redis приводит к чтению из основного источника.
package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

const (
	roomKeyFormat     = "%s:room:%d"
	facilityKeyFormat = "%s:facility:%d"

	DefaultPrefix = "srs"
	DefaultTTL    = 5 * time.Minute
)

// Cache декоратор Source с кешированием в Redis
type Cache struct {
	client *redis.Client
	source Source
	logger Logger
	prefix string
	ttl    time.Duration
}

// NewCache создает кеш. Пустой prefix и ttl <= 0 заменяются значениями по умолчанию.
func NewCache(client *redis.Client, source Source, logger Logger, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		source: source,
		logger: logger,
		prefix: prefix,
		ttl:    ttl,
	}
}

// GetByID возвращает комнату из кеша или из источника
func (c *Cache) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	key := fmt.Sprintf(roomKeyFormat, c.prefix, roomID)

	var cached cachedRoom
	if c.load(ctx, key, &cached) {
		return cached.toDomain(), nil
	}

	room, err := c.source.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, fromRoom(room))
	return room, nil
}

// GetFacilityByID возвращает учреждение из кеша или из источника
func (c *Cache) GetFacilityByID(ctx context.Context, facilityID int64) (*domain.Facility, error) {
	key := fmt.Sprintf(facilityKeyFormat, c.prefix, facilityID)

	var cached cachedFacility
	if c.load(ctx, key, &cached) {
		return cached.toDomain(), nil
	}

	facility, err := c.source.GetFacilityByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, fromFacility(facility))
	return facility, nil
}

func (c *Cache) load(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("Cache.load: redis get %s failed: %v", key, err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Cache.load: corrupted entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, value interface{}) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache.store: marshal %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache.store: redis set %s failed: %v", key, err)
	}
}
