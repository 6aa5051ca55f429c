package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/loadbridge-backend/api/routes"
	"github.com/angelmondragon/loadbridge-backend/internal/auth"
	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/internal/deliveries"
	"github.com/angelmondragon/loadbridge-backend/internal/dispatch"
	"github.com/angelmondragon/loadbridge-backend/internal/notifications"
	"github.com/angelmondragon/loadbridge-backend/internal/products"
	"github.com/angelmondragon/loadbridge-backend/internal/profiles"
	"github.com/angelmondragon/loadbridge-backend/internal/users"
	"github.com/angelmondragon/loadbridge-backend/pkg/auth/session"
	"github.com/angelmondragon/loadbridge-backend/pkg/config"
	"github.com/angelmondragon/loadbridge-backend/pkg/db"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
	"github.com/angelmondragon/loadbridge-backend/pkg/migrate"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	profileRepo := profiles.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	dealRepo := deals.NewRepository(gdb)
	dispatchRepo := dispatch.NewRepository(gdb)
	deliveryRepo := deliveries.NewRepository(gdb)
	outboxService := outbox.NewService(outbox.NewRepository(gdb), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	dealService, err := deals.NewService(dealRepo, dbClient, outboxService, profileRepo, productRepo, deals.NewRequestSweeper())
	if err != nil {
		logg.Error(context.Background(), "failed to create deal service", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(dispatchRepo, dealRepo, dbClient, outboxService, profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(deliveryRepo, dealRepo, dbClient, outboxService, profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	profileService, err := profiles.NewService(profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			Products:      productService,
			Deals:         dealService,
			Dispatch:      dispatchService,
			Deliveries:    deliveryService,
			Profiles:      profileService,
			Notifications: notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
