package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pokedex/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pokedex/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	rateLimitReasonClientRate = "client-rate"
	rateLimitReasonGlobalRate = "global-rate"
)

// WriteRateLimit throttles mutating routes. The per-client bucket is checked
// first so one noisy caller is turned away before it can drain the shared
// budget.
func (s *Server) WriteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.writeGuard.Enabled() {
			c.Next()
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		ctx := c.Request.Context()

		allowed, err := s.writeGuard.AllowClient(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("write client rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			denyWriteRateLimit(c, endpoint, rateLimitReasonClientRate, s.obsMetrics)
			return
		}

		allowed, err = s.writeGuard.AllowGlobal(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("write global rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			denyWriteRateLimit(c, endpoint, rateLimitReasonGlobalRate, s.obsMetrics)
			return
		}

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func denyWriteRateLimit(c *gin.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("write rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, metrics)

	c.Header("Retry-After", "1")
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
