package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qscore-labs/qscore/pkg/domain/security"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
)

const (
	ObservationKeyPattern = "facts:%s"
	NameKeyPattern        = "ens:%s"
)

// RedisFactCache stores chain observations and ENS forward lookups in Redis.
type RedisFactCache struct {
	client  Client
	factTTL time.Duration
	nameTTL time.Duration
}

func NewRedisFactCache(client Client, factTTL, nameTTL time.Duration) *RedisFactCache {
	return &RedisFactCache{client: client, factTTL: factTTL, nameTTL: nameTTL}
}

func (c *RedisFactCache) GetObservation(ctx context.Context, address string) (security.Observation, bool, error) {
	raw, err := c.client.Get(ctx, observationKey(address))
	if errors.Is(err, ErrMiss) {
		prometheus.FactCacheResults.WithLabelValues("miss").Inc()
		return security.Observation{}, false, nil
	}
	if err != nil {
		prometheus.FactCacheResults.WithLabelValues("error").Inc()
		return security.Observation{}, false, fmt.Errorf("get observation: %w", err)
	}

	var obs security.Observation
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		prometheus.FactCacheResults.WithLabelValues("error").Inc()
		return security.Observation{}, false, fmt.Errorf("decode observation: %w", err)
	}
	prometheus.FactCacheResults.WithLabelValues("hit").Inc()
	return obs, true, nil
}

func (c *RedisFactCache) SaveObservation(ctx context.Context, obs security.Observation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("encode observation: %w", err)
	}
	if err := c.client.Set(ctx, observationKey(obs.Address), string(data), c.factTTL); err != nil {
		return fmt.Errorf("save observation: %w", err)
	}
	return nil
}

func (c *RedisFactCache) GetAddressForName(ctx context.Context, name string) (string, bool, error) {
	addr, err := c.client.Get(ctx, nameKey(name))
	if errors.Is(err, ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get name: %w", err)
	}
	return addr, true, nil
}

func (c *RedisFactCache) SaveAddressForName(ctx context.Context, name, address string) error {
	if err := c.client.Set(ctx, nameKey(name), address, c.nameTTL); err != nil {
		return fmt.Errorf("save name: %w", err)
	}
	return nil
}

// MemoryFactCache is the in-process fallback used when Redis is disabled.
type MemoryFactCache struct {
	observations *TTLMap[security.Observation]
	names        *TTLMap[string]
}

func NewMemoryFactCache(factTTL, nameTTL time.Duration) *MemoryFactCache {
	return &MemoryFactCache{
		observations: NewTTLMap[security.Observation](factTTL),
		names:        NewTTLMap[string](nameTTL),
	}
}

func (c *MemoryFactCache) GetObservation(_ context.Context, address string) (security.Observation, bool, error) {
	obs, ok := c.observations.Get(strings.ToLower(address))
	if ok {
		prometheus.FactCacheResults.WithLabelValues("hit").Inc()
	} else {
		prometheus.FactCacheResults.WithLabelValues("miss").Inc()
	}
	return obs, ok, nil
}

func (c *MemoryFactCache) SaveObservation(_ context.Context, obs security.Observation) error {
	c.observations.Set(strings.ToLower(obs.Address), obs)
	return nil
}

func (c *MemoryFactCache) GetAddressForName(_ context.Context, name string) (string, bool, error) {
	addr, ok := c.names.Get(strings.ToLower(name))
	return addr, ok, nil
}

func (c *MemoryFactCache) SaveAddressForName(_ context.Context, name, address string) error {
	c.names.Set(strings.ToLower(name), address)
	return nil
}

func observationKey(address string) string {
	return fmt.Sprintf(ObservationKeyPattern, strings.ToLower(address))
}

func nameKey(name string) string {
	return fmt.Sprintf(NameKeyPattern, strings.ToLower(name))
}
