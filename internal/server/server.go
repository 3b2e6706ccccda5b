package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/datalysis-io/datalysis/internal/config"
	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
	"github.com/datalysis-io/datalysis/internal/observability"
	obsmiddleware "github.com/datalysis-io/datalysis/internal/observability/logger"
	obstracing "github.com/datalysis-io/datalysis/internal/observability/tracing"
	reportdomain "github.com/datalysis-io/datalysis/internal/report/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(corsMiddleware(cfg))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Datalysis API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-Id"}
	return cors.New(corsCfg)
}

func registerGin(cfg config.Config, obsCfg observability.Config) *gin.Engine {
	return NewEngine(cfg, obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine    *gin.Engine
	cfg       config.Config
	analysis  *config.AnalysisConfigHolder
	log       *zap.Logger
	ingestSvc ingestdomain.Service
	reportSvc reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Analysis  *config.AnalysisConfigHolder
	Log       *zap.Logger
	IngestSvc ingestdomain.Service
	ReportSvc reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		analysis:  p.Analysis,
		log:       p.Log.Named("server"),
		ingestSvc: p.IngestSvc,
		reportSvc: p.ReportSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.POST("/upload", s.Upload)
	s.engine.GET("/reports", s.ListReports)
	s.engine.GET("/reports/:id", s.GetReport)
}
