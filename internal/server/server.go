package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability"
	obsmiddleware "github.com/smallbiznis/pokedex/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pokedex/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pokedex/internal/observability/tracing"
	"github.com/smallbiznis/pokedex/internal/pokemon"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	pokemon.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	gin.EnableJsonDecoderDisallowUnknownFields()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

// RunHTTP serves the engine for the lifetime of the fx app.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	pokemonSvc pokemondomain.Service
	obsMetrics *obsmetrics.Metrics
	writeGuard *ratelimit.WriteGuard
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	PokemonSvc pokemondomain.Service
	ObsMetrics *obsmetrics.Metrics   `optional:"true"`
	WriteGuard *ratelimit.WriteGuard `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		pokemonSvc: p.PokemonSvc,
		obsMetrics: p.ObsMetrics,
		writeGuard: p.WriteGuard,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func RegisterRoutes(s *Server) {
	api := s.engine.Group("/api")

	api.GET("/pokemon", s.ListPokemon)
	api.GET("/pokemon/:id", s.GetPokemonByID)

	api.POST("/pokemon", s.WriteRateLimit(), s.CreatePokemon)
	api.PATCH("/pokemon/:id", s.WriteRateLimit(), s.UpdatePokemon)
	api.DELETE("/pokemon/:id", s.WriteRateLimit(), s.DeletePokemon)
}
