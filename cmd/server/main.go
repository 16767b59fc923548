package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecochain/token-catalog/internal/auth"
	"github.com/ecochain/token-catalog/internal/client"
	"github.com/ecochain/token-catalog/internal/config"
	"github.com/ecochain/token-catalog/internal/events"
	"github.com/ecochain/token-catalog/internal/handler"
	"github.com/ecochain/token-catalog/internal/logging"
	"github.com/ecochain/token-catalog/internal/middleware"
	"github.com/ecochain/token-catalog/internal/mockdata"
	"github.com/ecochain/token-catalog/internal/repository"
	"github.com/ecochain/token-catalog/internal/service"
	"github.com/ecochain/token-catalog/internal/storage"
	"github.com/ecochain/token-catalog/internal/trade"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type repositories struct {
	tokens  repository.Tokens
	users   repository.Users
	wallets repository.Wallets
	txs     repository.Transactions
	db      *sqlx.DB
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	repos, err := openRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	// Initialize Redis client (if enabled)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
			redisClient.Close()
			redisClient = nil
		} else {
			logger.Info("Connected to Redis", zap.String("address", cfg.Redis.Addr))
			defer redisClient.Close()
		}
	}

	// Event sinks: Kafka (if enabled) and the websocket feed
	hub := events.NewHub(logger)
	defer hub.Close()

	sinks := []events.Publisher{events.Only(hub, events.TokenCreated)}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
		defer producer.Close()
		// Kafka delivery runs off the request path
		async := events.NewAsync(producer, 1024, 5*time.Second, logger)
		defer async.Close()
		sinks = append(sinks, async)
		logger.Info("Initialized Kafka producer", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	publisher := events.NewFanout(logger, sinks...)

	topics := service.DefaultTopics()
	if t := cfg.Kafka.Topic("tokenEvents"); t != "" {
		topics.Token = t
	}
	if t := cfg.Kafka.Topic("tradeEvents"); t != "" {
		topics.Trade = t
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionDuration)
	if err != nil {
		logger.Fatal("Failed to create session issuer", zap.Error(err))
	}

	media, err := storage.NewStorage(cfg.Media)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.String("type", cfg.Media.Type), zap.Error(err))
	}

	registry := trade.NewRegistry(
		service.InstrumentSettler(newSettler(cfg.Settlement, logger)),
		logger,
		trade.WithValidator(validator.ValidateCatalogIntent),
	)

	// Create services
	tokenService := service.NewTokenService(repos.tokens, repos.users, repos.txs, registry, media, publisher, topics, logger)
	walletService := service.NewWalletService(repos.users, repos.wallets, repos.tokens, repos.txs, registry, issuer, publisher, topics, logger)
	userService := service.NewUserService(repos.users, repos.tokens, logger)

	routerCfg := handler.RouterConfig{
		TokenService:  tokenService,
		WalletService: walletService,
		UserService:   userService,
		Issuer:        issuer,
		Redis:         redisClient,
		Cache: middleware.CacheConfig{
			Enabled:         redisClient != nil,
			DefaultDuration: cfg.Redis.CacheTTL,
			PrefixKey:       cfg.Redis.Prefix,
		},
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstSize:         cfg.RateLimit.BurstSize,
		Uploads: handler.UploadLimits{
			MaxSize:      cfg.Media.MaxSize,
			AllowedTypes: cfg.Media.AllowedTypes,
		},
		Feed:   hub,
		Logger: logger,
	}
	if cfg.Media.Type != "s3" {
		routerCfg.UploadsDir = cfg.Media.Local.BasePath
		routerCfg.UploadsURL = cfg.Media.Local.BaseURL
	}
	router := handler.SetupRouter(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("settlement", cfg.Settlement.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func newSettler(cfg config.SettlementConfig, logger *zap.Logger) trade.Settler {
	if cfg.Mode == "remote" {
		return client.NewSettlementClient(cfg.URL, cfg.Timeout, logger)
	}
	return trade.NewMockSettler(cfg.Delay)
}

func openRepositories(cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	now := time.Now()

	if cfg.Storage.Driver != "postgres" {
		repos := &repositories{
			wallets: repository.NewMemoryWalletRepository(),
			txs:     repository.NewMemoryTransactionRepository(),
		}
		if cfg.Storage.Seed {
			repos.tokens = repository.NewMemoryTokenRepository(mockdata.Tokens(now), mockdata.Extras())
			repos.users = repository.NewMemoryUserRepository(mockdata.Users(now)...)
		} else {
			repos.tokens = repository.NewMemoryTokenRepository(nil, nil)
			repos.users = repository.NewMemoryUserRepository()
		}
		return repos, nil
	}

	db, err := connectToDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := repository.Migrate(db.DB); err != nil {
			db.Close()
			return nil, err
		}
	}

	repos := &repositories{
		tokens:  repository.NewTokenRepository(db, logger),
		users:   repository.NewUserRepository(db, logger),
		wallets: repository.NewWalletRepository(db, logger),
		txs:     repository.NewTransactionRepository(db, logger),
		db:      db,
	}
	if cfg.Storage.Seed {
		if err := seed(context.Background(), repos, now, logger); err != nil {
			db.Close()
			return nil, err
		}
	}
	return repos, nil
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dbConfig.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

// seed loads the demo catalog into an empty database
func seed(ctx context.Context, repos *repositories, now time.Time, logger *zap.Logger) error {
	existing, err := repos.tokens.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, u := range mockdata.Users(now) {
		u := u
		if err := repos.users.Create(ctx, &u); err != nil {
			return err
		}
	}
	tokens := mockdata.Tokens(now)
	for i := range tokens {
		if err := repos.tokens.Create(ctx, &tokens[i]); err != nil {
			return err
		}
	}
	for _, e := range mockdata.Extras() {
		e := e
		if err := repos.tokens.SaveExtras(ctx, &e); err != nil {
			return err
		}
	}

	logger.Info("Seeded demo catalog", zap.Int("tokens", len(tokens)))
	return nil
}
