package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-ordering-api/cache"
	"food-ordering-api/config"
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"
	"food-ordering-api/notify"
	"food-ordering-api/payment"
	"food-ordering-api/realtime"
	"food-ordering-api/repository"
	"food-ordering-api/routes"
	"food-ordering-api/service"
	"food-ordering-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	if !cfg.Relaxed() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	logrus.WithField("driver", cfg.DBDriver).Info("database connected and migrated")

	ctx := context.Background()
	images, err := storage.New(ctx, storage.Config{
		Driver:             cfg.StorageDriver,
		LocalPath:          cfg.LocalStoragePath,
		PublicURL:          cfg.PublicURL,
		S3Region:           cfg.S3Region,
		S3Bucket:           cfg.S3Bucket,
		GCSBucket:          cfg.GCSBucket,
		GCSCredentialsFile: cfg.GCSCredentialsFile,
	})
	if err != nil {
		logrus.Fatalf("failed to set up image storage: %v", err)
	}

	var store service.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		store = cache.NewRedis(rdb)
	}

	hub := realtime.NewHub(cfg.CORSOrigins)
	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
	if cfg.StripeSecretKey == "" {
		logrus.Warn("STRIPE_SECRET_KEY not set; checkout will fail")
	}

	users := repository.NewUserRepository(db)
	restaurants := repository.NewRestaurantRepository(db)
	menus := repository.NewMenuRepository(db)
	orders := repository.NewOrderRepository(db)
	checkouts := repository.NewCheckoutRepository(db)

	authSvc := service.NewAuthService(users, mailer(cfg), otpProvider(cfg), images, service.AuthConfig{
		Relaxed:         cfg.Relaxed(),
		DefaultDialCode: cfg.DefaultDialCode,
		FrontendURL:     cfg.FrontendURL,
	})
	restaurantSvc := service.NewRestaurantService(restaurants, images, store, cfg.CacheTTL)
	menuSvc := service.NewMenuService(menus, restaurants, images, store)
	orderSvc := service.NewOrderService(orders, checkouts, restaurants, gateway, hub, service.OrderConfig{
		FrontendURL: cfg.FrontendURL,
	})

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, !cfg.Relaxed())

	r := routes.NewEngine(logrus.StandardLogger(), cfg.CORSOrigins)
	opts := routes.Options{DB: db, Tokens: tokens}
	if local, ok := images.(*storage.Local); ok {
		opts.UploadsDir = local.Dir()
	}
	routes.SetupRoutes(r, routes.Handlers{
		Users:            handlers.NewUserHandler(authSvc, tokens),
		Restaurants:      handlers.NewRestaurantHandler(restaurantSvc),
		Menus:            handlers.NewMenuHandler(menuSvc),
		Orders:           handlers.NewOrderHandler(orderSvc),
		RestaurantOrders: handlers.NewRestaurantOrderHandler(orderSvc, restaurantSvc, hub),
	}, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func setupLogger(cfg *config.Config) {
	if cfg.Relaxed() {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// mailer falls back to logging mails in development when SMTP is not set up
func mailer(cfg *config.Config) service.Mailer {
	if cfg.Relaxed() && cfg.SMTPHost == "" {
		logrus.Info("SMTP not configured; emails will be logged")
		return notify.NewLogMailer(logrus.StandardLogger())
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func otpProvider(cfg *config.Config) service.OTPProvider {
	if cfg.Relaxed() && cfg.TwilioAccountSID == "" {
		logrus.Info("Twilio not configured; verification codes will be logged")
		return notify.NewDevOTP(logrus.StandardLogger())
	}
	return notify.NewTwilioOTP(notify.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		ServiceSID: cfg.TwilioServiceSID,
		Channel:    cfg.TwilioChannel,
	})
}
