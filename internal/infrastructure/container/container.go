// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redis/go-redis/v9"

	"github.com/mealsmith/api/internal/application/chat"
	"github.com/mealsmith/api/internal/application/recommendation"
	"github.com/mealsmith/api/internal/infrastructure/ai/openai"
	"github.com/mealsmith/api/internal/infrastructure/cache"
	"github.com/mealsmith/api/internal/infrastructure/config"
	"github.com/mealsmith/api/internal/infrastructure/http/server"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	gormRepo "github.com/mealsmith/api/internal/infrastructure/persistence/gorm"
	"github.com/mealsmith/api/internal/infrastructure/security"
	"github.com/mealsmith/api/internal/ports/inbound"
	"github.com/mealsmith/api/internal/ports/outbound"
	"github.com/mealsmith/api/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		db, err := gormRepo.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		log.Info("connected to database", zap.String("driver", cfg.Database.Driver))
		return db, nil
	},
)

// CacheModule provides the recommendation cache backend per config
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
		if cfg.Cache.Driver == "redis" {
			client := redis.NewClient(&redis.Options{
				Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.Database,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
				PoolSize:     cfg.Redis.PoolSize,
			})
			log.Info("using redis recommendation cache",
				zap.String("host", cfg.Redis.Host),
				zap.Int("port", cfg.Redis.Port),
			)
			return cache.NewRedisStore(client, "mealsmith:rec:")
		}
		log.Info("using in-memory recommendation cache")
		return cache.NewMemoryStore()
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewRecipeRepository,
	gormRepo.NewMessageRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	monitoring.NewMetricsCollector,
	security.NewAuthService,
	fx.Annotate(
		openai.NewClient,
		fx.As(new(outbound.CompletionService)),
	),
	chat.NewPreferenceLoader,
	chat.NewSynthesizer,
	chat.NewRecorder,
	func(
		recipes outbound.RecipeRepository,
		messages outbound.MessageRepository,
		completions outbound.CompletionService,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) []chat.ContentResolver {
		return []chat.ContentResolver{
			chat.NewRecipeCandidateResolver(recipes),
			chat.NewNutritionAdvisor(completions, metrics, log),
			chat.NewMediaSuggester(),
			chat.NewCookingStepGuide(recipes, messages, log),
		}
	},
	fx.Annotate(
		chat.NewService,
		fx.As(new(inbound.ChatService)),
	),
	fx.Annotate(
		func(
			loader *chat.PreferenceLoader,
			recipes outbound.RecipeRepository,
			completions outbound.CompletionService,
			cacheRepo outbound.CacheRepository,
			cfg *config.Config,
			metrics *monitoring.MetricsCollector,
			log *zap.Logger,
		) *recommendation.Service {
			return recommendation.NewService(loader, recipes, completions, cacheRepo, cfg.Cache.RecommendationTTL, metrics, log)
		},
		fx.As(new(inbound.RecommendationService)),
	),
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// cacheSweepInterval is how often the expired-entry sweeper runs
const cacheSweepInterval = 5 * time.Minute

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
	recommendations inbound.RecommendationService,
) {
	sweeperDone := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("failed to start HTTP server", zap.Error(err))
				}
			}()

			// Periodic cache maintenance; sweep is explicit, never tied to
			// the request path
			go func() {
				ticker := time.NewTicker(cacheSweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-sweeperDone:
						return
					case <-ticker.C:
						if _, err := recommendations.SweepExpired(context.Background()); err != nil {
							log.Warn("cache sweep failed", zap.Error(err))
						}
					}
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(sweeperDone)

			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
