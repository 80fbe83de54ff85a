package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "motomarket/internal/app/services/auth"
	"motomarket/internal/app/services/catalog"
	"motomarket/internal/app/services/providers"
	"motomarket/internal/app/services/reviews"
	"motomarket/internal/app/services/scheduling"
	"motomarket/internal/app/services/sellers"
	domainauth "motomarket/internal/domain/auth"
	domainbooking "motomarket/internal/domain/booking"
	domainlistings "motomarket/internal/domain/listings"
	domainreviews "motomarket/internal/domain/reviews"
	domainservices "motomarket/internal/domain/services"
	domainuser "motomarket/internal/domain/user"
	"motomarket/internal/infra/broker/kafka"
	"motomarket/internal/infra/cache"
	"motomarket/internal/infra/config"
	mongodb "motomarket/internal/infra/db/mongo"
	ginserver "motomarket/internal/infra/http/gin"
	"motomarket/internal/infra/obs"
	"motomarket/internal/infra/security"
	"motomarket/internal/infra/storage/memory"
	"motomarket/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, logger, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type repositories struct {
	listings domainlistings.Repository
	services domainservices.Repository
	bookings domainbooking.Repository
	reviews  domainreviews.Repository
	users    domainuser.Repository
}

type application struct {
	handlers ginserver.Handlers
	closers  []func() error
}

func (a application) close(logger *slog.Logger) {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application

	repos, readiness, err := buildRepositories(ctx, cfg, &app)
	if err != nil {
		return application{}, err
	}

	var sessions domainauth.SessionStore = memory.NewSessionStore()
	var metaCache catalog.MetaCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return application{}, fmt.Errorf("redis: %w", err)
		}
		app.closers = append(app.closers, redisClient.Close)
		readiness = append(readiness, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		sessions = cache.NewSessionStore(redisClient)
		metaCache = cache.NewCatalogMetaCache(redisClient, cfg.CatalogMetaTTL, logger)
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	var events scheduling.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka: %w", err)
		}
		app.closers = append(app.closers, producer.Close)
		events = producer
		logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka brokers not configured, booking events disabled")
	}

	var photos sellers.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return application{}, fmt.Errorf("object storage: %w", err)
		}
		photos = s3Client
	} else {
		logger.Warn("object storage not configured, photo uploads disabled")
	}

	authService := &authsvc.Service{
		Users:      repos.users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	catalogService := &catalog.Service{
		Listings: repos.listings,
		Cache:    metaCache,
		Logger:   logger,
	}
	sellerService := &sellers.Service{
		Listings: repos.listings,
		Photos:   photos,
		Cache:    metaCache,
		Logger:   logger,
	}
	providerService := &providers.Service{
		Services: repos.services,
		Logger:   logger,
	}
	schedulingService := &scheduling.Service{
		Services: repos.services,
		Bookings: repos.bookings,
		Events:   events,
		Logger:   logger,
	}
	reviewService := &reviews.Service{
		Reviews:  repos.reviews,
		Bookings: repos.bookings,
		Services: repos.services,
		Logger:   logger,
	}

	app.handlers = ginserver.Handlers{
		Auth:    ginserver.AuthHandler{Service: authService, Logger: logger},
		Listing: ginserver.ListingHandler{Catalog: catalogService},
		Seller:  ginserver.SellerHandler{Sellers: sellerService},
		Service: ginserver.ServiceHandler{
			Providers:      providerService,
			Scheduling:     schedulingService,
			ReviewsService: reviewService,
		},
		Booking: ginserver.BookingHandler{
			Scheduling: schedulingService,
			Reviews:    reviewService,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		Readiness:      readiness,
	}
	return app, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, app *application) (repositories, []obs.ReadinessCheck, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("mongo: %w", err)
		}
		app.closers = append(app.closers, func() error {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.DB.Client().Disconnect(disconnectCtx)
		})
		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := client.EnsureIndexes(indexCtx); err != nil {
			return repositories{}, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		repos := repositories{
			listings: mongodb.NewListingRepository(client.DB),
			services: mongodb.NewServiceRepository(client.DB),
			bookings: mongodb.NewBookingRepository(client.DB),
			reviews:  mongodb.NewReviewRepository(client.DB),
			users:    mongodb.NewUserRepository(client.DB),
		}
		return repos, []obs.ReadinessCheck{client.Ping}, nil
	}

	repos := repositories{
		listings: memory.NewListingRepository(),
		services: memory.NewServiceRepository(),
		bookings: memory.NewBookingRepository(),
		reviews:  memory.NewReviewRepository(),
		users:    memory.NewUserRepository(),
	}
	return repos, nil, nil
}
