package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/admin"
	"github.com/sistenfrota/auth-service/internal/config"
	"github.com/sistenfrota/auth-service/internal/controllers"
	"github.com/sistenfrota/auth-service/internal/database"
	"github.com/sistenfrota/auth-service/internal/logger"
	"github.com/sistenfrota/auth-service/internal/middleware"
	"github.com/sistenfrota/auth-service/internal/models"
	"github.com/sistenfrota/auth-service/internal/repositories"
	"github.com/sistenfrota/auth-service/internal/routes"
	"github.com/sistenfrota/auth-service/internal/services"
)

func main() {
	// .env is optional; deployment provides real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := database.Connect(&cfg.Database, zlog); err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			zlog.Error("error closing database", zap.Error(err))
		}
	}()

	if err := database.RunMigrations(&cfg.Database); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(database.GetDB())
	historyRepo := repositories.NewLoginHistoryRepository(database.GetDB())

	if err := admin.EnsureAdmin(userRepo, cfg.Auth.BcryptCost, zlog); err != nil {
		zlog.Fatal("failed to seed admin account", zap.Error(err))
	}

	tokenService, err := services.NewTokenService(&cfg.JWT)
	if err != nil {
		zlog.Fatal("failed to build token service", zap.Error(err))
	}

	attemptStore, revocationStore := buildStores(cfg, zlog)

	lockout, err := cfg.Auth.GetLockoutDuration()
	if err != nil {
		zlog.Fatal("invalid lockout_duration", zap.Error(err))
	}
	throttle := services.NewLoginThrottle(attemptStore, cfg.Auth.MaxLoginAttempts, lockout)

	mailer := buildMailer(cfg, zlog)

	authService, err := services.NewAuthService(
		userRepo,
		historyRepo,
		tokenService,
		throttle,
		revocationStore,
		mailer,
		services.NewStaticGeoResolver(),
		&cfg.Auth,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to build auth service", zap.Error(err))
	}

	authController := controllers.NewAuthController(authService, zlog)
	userController := controllers.NewUserController(authService, zlog)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(zlog))
	router.Use(corsMiddleware(&cfg.CORS))

	routes.SetupRoutes(
		router,
		authController,
		userController,
		middleware.AuthMiddleware(tokenService, revocationStore, userRepo),
		middleware.RequireRole(models.RoleAdmin),
	)

	runServer(cfg, router, zlog)
}

// buildStores selects the in-memory throttle/revocation stores or the
// Redis-backed ones. In-memory state is single-instance: counters and the
// blacklist are lost on restart and not shared between replicas.
func buildStores(cfg *config.Config, zlog *zap.Logger) (services.AttemptStore, services.RevocationStore) {
	if !cfg.Redis.Enabled {
		return services.NewMemoryAttemptStore(), services.NewMemoryRevocationStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		zlog.Warn("redis unreachable, falling back to in-memory stores", zap.Error(err))
		return services.NewMemoryAttemptStore(), services.NewMemoryRevocationStore()
	}

	window, err := cfg.Auth.GetLockoutDuration()
	if err != nil {
		zlog.Fatal("invalid lockout_duration", zap.Error(err))
	}
	zlog.Info("using redis-backed auth stores", zap.String("addr", client.Options().Addr))
	return services.NewRedisAttemptStore(client, window), services.NewRedisRevocationStore(client)
}

func buildMailer(cfg *config.Config, zlog *zap.Logger) services.Mailer {
	if cfg.Email.Enabled {
		return services.NewSMTPMailer(&cfg.Email)
	}
	return services.NewLogMailer(zlog)
}

func runServer(cfg *config.Config, router *gin.Engine, zlog *zap.Logger) {
	readTimeout, _ := cfg.Server.GetReadTimeout()
	writeTimeout, _ := cfg.Server.GetWriteTimeout()

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		zlog.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to run server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	zlog.Info("shutting down server")

	shutdownTimeout, err := cfg.Server.GetShutdownTimeout()
	if err != nil || shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}
}

func requestLogger(zlog *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zlog.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := strings.Join(cfg.AllowedOrigins, ", ")
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methods)
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
