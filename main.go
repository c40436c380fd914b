package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"repairhub/internal/auth"
	"repairhub/internal/cache"
	"repairhub/internal/config"
	"repairhub/internal/database"
	"repairhub/internal/handlers"
	"repairhub/internal/jobs"
	"repairhub/internal/middleware"
	"repairhub/internal/notify"
	"repairhub/internal/payment"
	"repairhub/internal/service"
	"repairhub/internal/store"
	"repairhub/internal/templates"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	config.Load()
	cfg := config.AppEnv
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.IsDevelopment() {
		dev, _ := zap.NewDevelopment()
		zap.ReplaceGlobals(dev)
		logger = dev
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect(client)

	db := client.Database(cfg.DBName)
	logger.Info("MongoDB connected", zap.String("db", db.Name()))

	for _, err := range database.EnsureAll(db) {
		logger.Warn("index warning", zap.Error(err))
	}

	stores := store.New(db)

	var tx store.Transactor = store.NoTransaction{}
	if cfg.MongoTransactions {
		tx = store.NewTransactor(client, true)
	}

	var reportCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unavailable, report cache disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			reportCache = rc
			defer rc.Close()
		}
		cancel()
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}

	var pusher notify.Pusher
	switch cfg.PushProvider {
	case "firebase":
		fp, err := notify.NewFirebasePusher(ctx, cfg.FirebaseCredentials)
		if err != nil {
			logger.Fatal("could not initialise firebase messaging", zap.Error(err))
		}
		pusher = fp
	default:
		pusher = notify.NewExpoPusher(cfg.ExpoPushURL, httpClient)
	}
	dispatcher := notify.NewDispatcher(pusher, stores.Outbox)

	var sender notify.Sender = notify.LogSender{}
	if cfg.EmailHost != "" {
		sender = notify.SMTPSender{
			Host: cfg.EmailHost,
			Port: cfg.EmailPort,
			User: cfg.EmailUser,
			Pass: cfg.EmailPass,
			From: cfg.EmailFrom,
		}
	}
	mailer := notify.NewMailer(sender, cfg.BaseURL, cfg.EmailTokenTTL)

	google, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientIDs)
	if err != nil {
		logger.Fatal("could not initialise google verifier", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.EmailTokenTTL)

	gateway := payment.NewSSLCommerz(cfg.SSLCommerzStoreID, cfg.SSLCommerzStorePasswd,
		cfg.SSLCommerzBaseURL, cfg.BaseURL, httpClient)

	orders := service.NewOrderService(service.OrderDeps{
		Orders:      stores.Orders,
		Users:       stores.Users,
		Technicians: stores.Technicians,
		Products:    stores.Products,
		Tx:          tx,
		Cache:       reportCache,
		Notifier:    dispatcher,
		ReportTTL:   cfg.ReportCacheTTL,
	})

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.SetHTMLTemplate(templates.Pages())

	handlers.RegisterRoutes(r, handlers.Deps{
		Users:       stores.Users,
		Addresses:   stores.Addresses,
		Agents:      stores.Agents,
		Technicians: stores.Technicians,
		Products:    stores.Products,
		Revoked:     stores.Tokens,
		Orders:      orders,
		Tokens:      tokens,
		Google:      google,
		Mailer:      mailer,
		Gateway:     gateway,
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	retryJob := jobs.NewPushRetryJob(dispatcher, cfg.PushRetrySchedule, cfg.PushMaxAttempts)
	if err := retryJob.Start(); err != nil {
		logger.Fatal("could not schedule push retries", zap.Error(err))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.AuthHeader, handlers.RefreshHeader},
		ExposedHeaders:   []string{middleware.AuthHeader, handlers.RefreshHeader},
		AllowCredentials: false,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	retryJob.Stop()
	dispatcher.Wait()
	mailer.Wait()
}
