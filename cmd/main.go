package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/jefin10/VoiceUPI/internal/auth"
	"github.com/jefin10/VoiceUPI/internal/command"
	"github.com/jefin10/VoiceUPI/internal/config"
	"github.com/jefin10/VoiceUPI/internal/events"
	"github.com/jefin10/VoiceUPI/internal/handler"
	"github.com/jefin10/VoiceUPI/internal/intent"
	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/notify"
	"github.com/jefin10/VoiceUPI/internal/query"
	redisClient "github.com/jefin10/VoiceUPI/internal/redis"
	"github.com/jefin10/VoiceUPI/internal/repository"
	"github.com/jefin10/VoiceUPI/internal/repository/memory"
	"github.com/jefin10/VoiceUPI/internal/repository/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// Ledger store: Postgres when configured, in-memory otherwise.
	var store repository.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := postgres.Open(cfg.DatabaseURL, cfg.LockWait)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		store = pgStore
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.NewStore(cfg.LockWait)
	}

	redis, err := redisClient.NewClient(redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Event publisher and read-model caches
	publisher := events.NewPublisher(redis.Client)
	balanceCache := redisClient.NewViewCache[models.BalanceView](redis.Client, 5*time.Minute)
	identityCache := redisClient.NewViewCache[models.IdentityView](redis.Client, 30*time.Minute)

	// Command + Query services
	identitySvc := command.NewIdentityCommandService(store, identityCache, publisher, cfg.SeedBalance)
	transferSvc := command.NewTransferCommandService(store, balanceCache, publisher)
	requestSvc := command.NewRequestCommandService(store, balanceCache, publisher)
	querySvc := query.NewLedgerQueryService(store, balanceCache, identityCache)

	// OTP verification and SMS delivery
	smsSender := notify.LogSender{}
	otpSvc := auth.NewOTPService(redis.Client, smsSender, []byte(cfg.JWTSecret), cfg.OTPTTL)

	// Money-request notifications consume the request event stream.
	notifier := notify.NewRequestNotifier(smsSender, redis.Client)
	subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
		Group:    "notifications",
		Consumer: "payments-service",
		Stream:   events.RequestEventsStream,
		Handler:  notifier.HandleEvent,
	})
	subCtx, stopSubscriber := context.WithCancel(context.Background())
	go func() {
		if err := subscriber.Start(subCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("subscriber stopped", "error", err)
		}
	}()

	classifier := intent.NewClient(cfg.ClassifierURL)

	authHandler := handler.NewAuthHandler(otpSvc)
	identityHandler := handler.NewIdentityHandler(identitySvc, querySvc)
	transferHandler := handler.NewTransferHandler(transferSvc, querySvc)
	requestHandler := handler.NewRequestHandler(requestSvc, querySvc)
	assistHandler := handler.NewAssistHandler(classifier, transferSvc, requestSvc, querySvc, cfg.MinConfidence)

	// Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.POST("/auth/otp/send", authHandler.SendOTP)
	v1.POST("/auth/otp/verify", authHandler.VerifyOTP)

	private := v1.Group("", middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	{
		private.POST("/identities", identityHandler.SignUp)
		private.GET("/identities/resolve", identityHandler.Resolve)
		private.GET("/me", identityHandler.Me)
		private.GET("/balance", transferHandler.GetBalance)
		private.POST("/transfers", transferHandler.Transfer)
		private.GET("/transactions", transferHandler.ListTransactions)
		private.POST("/money-requests", requestHandler.CreateRequest)
		private.PATCH("/money-requests/:requestId", requestHandler.UpdateStatus)
		private.GET("/money-requests", requestHandler.ListRequests)
		private.POST("/assist", assistHandler.Assist)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("payments service starting", "env", cfg.Env, "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	stopSubscriber()
	if err := store.Close(); err != nil {
		slog.Error("store close failed", "error", err)
	}
	if err := redis.Close(); err != nil {
		slog.Error("redis close failed", "error", err)
	}
	slog.Info("shutdown complete")
}
