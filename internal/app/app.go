package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snipvault/core/internal/config"
	"github.com/snipvault/core/internal/database"
	"github.com/snipvault/core/internal/middleware"
	"github.com/snipvault/core/internal/modules/ai"
	"github.com/snipvault/core/internal/modules/enrichment"
	jwtpkg "github.com/snipvault/core/internal/pkg/jwt"
	pkgredis "github.com/snipvault/core/internal/pkg/redis"
	"github.com/snipvault/core/internal/pkg/taskqueue"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *gorm.DB
	rc       *pkgredis.Client
	logger   *zap.Logger
	enricher *enrichment.Service
	cancel   context.CancelFunc
}

// New initializes the application: config → DB → Redis → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(buildCORSConfig(cfg)))

	gateway := ai.NewGateway(cfg.AI.FirstEnabledProvider())
	generators := ai.NewService(gateway)
	records := taskqueue.NewService(rc)
	enricher := enrichment.NewService(db, records, generators, logger.Named("enrichment"), cfg.Enrichment)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := enricher.Start(ctx); err != nil {
			logger.Error("enrichment pool exited", zap.Error(err))
		}
	}()

	app := &App{
		cfg:      cfg,
		router:   router,
		db:       db,
		rc:       rc,
		logger:   logger,
		enricher: enricher,
		cancel:   cancel,
	}
	app.registerRoutes()
	return app, nil
}

func buildCORSConfig(cfg *config.AppConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := originHost(origin)
			for _, pattern := range patterns {
				if originPatternMatches(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsConfig
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background workers and releases connections.
func (a *App) Shutdown() {
	a.cancel()
	_ = a.rc.Close()
}

func (a *App) uptime() time.Duration {
	return time.Since(processStart)
}

var processStart = time.Now()
