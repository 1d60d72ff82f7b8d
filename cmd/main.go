package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/framez/internal/cache"
	"github.com/weiawesome/framez/internal/config"
	"github.com/weiawesome/framez/internal/consumer"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/handler"
	"github.com/weiawesome/framez/internal/identity"
	"github.com/weiawesome/framez/internal/notify"
	"github.com/weiawesome/framez/internal/reconciler"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/internal/store"
	"github.com/weiawesome/framez/pkg/database"
	"github.com/weiawesome/framez/pkg/jwt"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/middleware"
	"github.com/weiawesome/framez/pkg/pubsub"
	"github.com/weiawesome/framez/pkg/storage"
)

const serviceName = "framez-api"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: serviceName,
	})
	logger := pkglog.L()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. Init DB and migrate
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Delete events must carry the full before-row for the CDC consumer.
	if cfg.Kafka.Brokers != "" && cfg.Database.Driver == "postgres" {
		if err := db.Exec(`ALTER TABLE users REPLICA IDENTITY FULL`).Error; err != nil {
			logger.Warn().Err(err).Msg("failed to set REPLICA IDENTITY FULL on users table")
		}
	}

	st := repository.NewGormStore(db)

	// 4. Init Redis hot-key store and author cache
	var hotKeys store.HotKeyStore = store.NopHotKeyStore{}
	if rs, err := store.NewRedisHotKeyStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn().Err(err).Msg("failed to connect to redis; hot-key tracking disabled")
	} else {
		hotKeys = rs
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis hot-key store connected")
	}
	defer hotKeys.Close()

	var authorCache cache.AuthorCache
	if cfg.Cache.Enabled {
		ac, err := cache.NewRedisAuthorCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, "framez:author:")
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect author cache; reading authors from the store")
		} else {
			authorCache = ac
			defer ac.Close()
		}
	}

	// 5. Init auth-state pub/sub and token manager
	bus, err := pubsub.New(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create pubsub")
	}
	defer bus.Close()

	tokens, err := jwt.NewManager(cfg.JWT)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create jwt manager")
	}

	provider := identity.NewGormProvider(db, tokens, bus, bcrypt.DefaultCost)

	// 6. Init blob storage
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var blobs storage.Storage
	var local *storage.LocalStorage
	switch cfg.Storage.Type {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, cfg.Storage.S3)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create s3 storage")
		}
		blobs = s3
	default:
		local, err = storage.NewLocalStorage(cfg.Storage.Local)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create local storage")
		}
		blobs = local
	}
	logger.Info().Str("type", cfg.Storage.Type).Msg("storage initialized")

	// 7. Init Kafka notification publisher
	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.Kafka.Brokers != "" {
		kp, err := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka publisher, notifications disabled")
		} else {
			publisher = kp
			logger.Info().Str("topic", cfg.Kafka.NotificationTopic).Msg("kafka notification publisher ready")
		}
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not configured; notifications and CDC disabled")
	}

	// 8. Create services
	authors := service.NewAuthorResolver(st.Users(), authorCache, cfg.Cache.AuthorTTL)
	assets := service.NewAssetService(blobs, cfg.Assets.Post, cfg.Assets.Avatar)
	profiles := service.NewProfileService(st.Users(), authors, hotKeys)
	services := handler.Services{
		Auth:     service.NewAuthService(provider, st.Users()),
		Profiles: profiles,
		Posts:    service.NewPostService(st, authors, assets, hotKeys),
		Comments: service.NewCommentService(st, authors, publisher),
		Likes:    service.NewLikeService(st, authors, publisher),
		Follows:  service.NewFollowService(st, authors, publisher),
		Assets:   assets,
		Push:     service.NewPushService(profiles),
	}

	// 9. Init Kafka CDC consumer
	var cdcConsumer *consumer.ConfluentConsumer
	if cfg.Kafka.Brokers != "" {
		kc, err := consumer.NewConfluentConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.CDCTopic,
			cfg.Kafka.GroupID,
			authors, // resolver invalidates cached authors
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka consumer, CDC updates disabled")
		} else if err := kc.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to start kafka consumer")
		} else {
			cdcConsumer = kc
			logger.Info().Str("topic", cfg.Kafka.CDCTopic).Msg("kafka CDC consumer started")
		}
	}

	// 10. Init reconciler and start
	rec := reconciler.New(hotKeys, service.NewCounterService(st), cfg.Reconciler)
	rec.Start(ctx)
	logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tokens.CleanupExpiredRevocations()
			}
		}
	}()

	// 11. Setup Gin router + HTTP server
	httpHandler := handler.NewHandler(services, middleware.NewAuthMiddleware(tokens), cfg.Server.MaxUploadBytes)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	if local != nil {
		r.Static(local.PublicURL(), local.BasePath())
	}
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("framez api starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 12. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		// Drain HTTP first so in-flight requests can still publish.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}

		cancel()

		if cdcConsumer != nil {
			if err := cdcConsumer.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing kafka consumer")
			}
		}

		rec.Stop()
		<-rec.Done()

		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing notification publisher")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("framez api stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}
