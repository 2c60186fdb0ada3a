package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pokedex/internal/config"
)

const (
	keyWriteGlobal = "pokemon:write:global"
	keyWriteClient = "pokemon:write:client:%s"
)

// WriteGuard throttles mutating requests before they reach the service. A
// nil guard admits everything, which is how the disabled configuration is
// represented.
type WriteGuard struct {
	enabled bool

	bucket *TokenBucket
	policy *PolicyHolder
}

func NewWriteGuard(cfg config.Config) (*WriteGuard, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	policy, err := NewPolicyHolder()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &WriteGuard{
		enabled: true,
		bucket:  NewTokenBucket(client),
		policy:  policy,
	}, nil
}

func (g *WriteGuard) Enabled() bool {
	return g != nil && g.enabled
}

// AllowClient admits one mutation for a single caller.
func (g *WriteGuard) AllowClient(ctx context.Context, clientKey string) (bool, error) {
	if !g.Enabled() {
		return true, nil
	}
	p := g.policy.Get()
	return g.bucket.Allow(ctx, fmt.Sprintf(keyWriteClient, strings.TrimSpace(clientKey)), p.PerClientRate, p.PerClientBurst)
}

// AllowGlobal admits one mutation against the shared budget.
func (g *WriteGuard) AllowGlobal(ctx context.Context) (bool, error) {
	if !g.Enabled() {
		return true, nil
	}
	p := g.policy.Get()
	return g.bucket.Allow(ctx, keyWriteGlobal, p.GlobalRate, p.GlobalBurst)
}
