// Package cache decorates read-mostly lookups with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const prefijoConfiguracion = "cfg:tienda:"

// ConfiguracionReader matches service.ConfiguracionReader.
type ConfiguracionReader interface {
	Obtener(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error)
}

// ConfiguracionCache serves store settings from Redis and falls through to the
// wrapped reader on a miss. Redis failures degrade to the wrapped reader;
// errors of the wrapped reader (NotFound included) are never cached.
type ConfiguracionCache struct {
	next ConfiguracionReader
	rdb  *redis.Client
	ttl  time.Duration
}

func NewConfiguracionCache(next ConfiguracionReader, rdb *redis.Client, ttl time.Duration) *ConfiguracionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ConfiguracionCache{next: next, rdb: rdb, ttl: ttl}
}

func (c *ConfiguracionCache) Obtener(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error) {
	key := prefijoConfiguracion + tenantID.String()

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cfg model.ConfiguracionTienda
		if jsonErr := json.Unmarshal(raw, &cfg); jsonErr == nil {
			return &cfg, nil
		}
		log.Warn().Str("key", key).Msg("cache: entrada corrupta, se ignora")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("cache: redis no disponible")
	}

	cfg, err := c.next.Obtener(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(cfg); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache: no se pudo guardar")
		}
	}
	return cfg, nil
}

// Invalidar drops the cached settings of a tenant.
func (c *ConfiguracionCache) Invalidar(ctx context.Context, tenantID uuid.UUID) error {
	return c.rdb.Del(ctx, prefijoConfiguracion+tenantID.String()).Err()
}

// Noop passes every call straight to the wrapped reader. Used when Redis is
// not configured.
type Noop struct {
	ConfiguracionReader
}

func NewNoop(next ConfiguracionReader) Noop { return Noop{ConfiguracionReader: next} }
