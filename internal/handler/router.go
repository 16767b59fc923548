package handler

import (
	"net/http"

	"github.com/ecochain/token-catalog/internal/auth"
	"github.com/ecochain/token-catalog/internal/middleware"
	"github.com/ecochain/token-catalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface is built from. Optional
// collaborators (Redis, Feed, Issuer) may be nil.
type RouterConfig struct {
	TokenService  *service.TokenService
	WalletService *service.WalletService
	UserService   *service.UserService
	Issuer        *auth.Issuer

	Redis *redis.Client
	Cache middleware.CacheConfig

	RateLimitEnabled  bool
	RequestsPerMinute int
	BurstSize         int

	Uploads    UploadLimits
	UploadsDir string
	UploadsURL string

	// Feed serves the live token websocket
	Feed http.Handler

	Logger *zap.Logger
}

// SetupRouter builds the gin engine with every route of the API
func SetupRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadsDir != "" && cfg.UploadsURL != "" {
		router.Static(cfg.UploadsURL, cfg.UploadsDir)
	}

	tokenHandler := NewTokenHandler(cfg.TokenService, cfg.WalletService, cfg.UserService, cfg.Uploads, logger)
	walletHandler := NewWalletHandler(cfg.WalletService, logger)
	userHandler := NewUserHandler(cfg.UserService, logger)

	v1 := router.Group("/v1")
	v1.Use(middleware.OptionalAuth(cfg.Issuer, logger))
	if cfg.RateLimitEnabled {
		v1.Use(middleware.RateLimit(cfg.RequestsPerMinute, cfg.BurstSize))
	}
	v1.Use(middleware.FlushOnWrite(cfg.Redis, cfg.Cache.PrefixKey, logger))
	{
		tokens := v1.Group("/tokens")
		tokens.Use(middleware.RedisCache(cfg.Redis, cfg.Cache, logger))
		{
			tokens.GET("", tokenHandler.ListTokens)
			tokens.POST("", tokenHandler.CreateToken)
			tokens.GET("/user/:userId", tokenHandler.ListByCreator)
			tokens.GET("/:id", tokenHandler.GetToken)
			tokens.PUT("/:id", tokenHandler.UpdateToken)
			tokens.DELETE("/:id", tokenHandler.DeleteToken)
			tokens.POST("/:id/image", tokenHandler.UploadImage)
			tokens.POST("/:id/liquidity", tokenHandler.AddLiquidity)
		}

		wallet := v1.Group("/wallet")
		{
			wallet.GET("", walletHandler.Info)
			wallet.GET("/transactions", walletHandler.Transactions)
			wallet.POST("/connect", walletHandler.Connect)
			wallet.POST("/disconnect", walletHandler.Disconnect)
			wallet.POST("/buy", walletHandler.Buy)
			wallet.POST("/sell", walletHandler.Sell)
			wallet.POST("/add-liquidity", walletHandler.AddLiquidity)
		}

		users := v1.Group("/users")
		{
			users.GET("/me/tokens", userHandler.MyTokens)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.GET("/:id/portfolio", userHandler.GetPortfolio)
			users.POST("/:id/portfolio", userHandler.AddToPortfolio)
			users.DELETE("/:id/portfolio/:tokenId", userHandler.RemoveFromPortfolio)
		}

		if cfg.Feed != nil {
			v1.GET("/ws/tokens", gin.WrapH(cfg.Feed))
		}
	}

	return router
}
