package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	mu    sync.Mutex
	calls int
	cfg   *model.ConfiguracionTienda
	err   error
}

var _ ConfiguracionReader = (*stubReader)(nil)

func (s *stubReader) Obtener(_ context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	cfg.TenantID = tenantID
	return &cfg, nil
}

func TestConfiguracionCache_RedisCaidoDegrada(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	next := &stubReader{cfg: &model.ConfiguracionTienda{TasaImpuesto: decimal.RequireFromString("0.16"), CreditoHabilitado: true}}
	c := NewConfiguracionCache(next, rdb, time.Minute)

	cfg, err := c.Obtener(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, cfg.CreditoHabilitado)
	assert.Equal(t, 1, next.calls)
}

func TestConfiguracionCache_ErroresNoSeCachean(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	boom := errors.New("no encontrado")
	c := NewConfiguracionCache(&stubReader{err: boom}, rdb, 0)
	_, err := c.Obtener(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestNoop_DelegaDirecto(t *testing.T) {
	next := &stubReader{cfg: &model.ConfiguracionTienda{}}
	n := NewNoop(next)
	tenant := uuid.New()
	cfg, err := n.Obtener(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, tenant, cfg.TenantID)
}
