package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/config"
	"github.com/yeremiapane/restaurant-saas/database"
	"github.com/yeremiapane/restaurant-saas/jobs"
	"github.com/yeremiapane/restaurant-saas/router"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// Usage: restaurant-saas [server|worker]
func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	mode := "server"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	if mode == "server" {
		if err := cfg.Validate(); err != nil {
			utils.ErrorLogger.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mq, err := jobs.Dial(jobs.Config{
		Host:     cfg.RabbitMQ.Host,
		Port:     cfg.RabbitMQ.Port,
		User:     cfg.RabbitMQ.User,
		Password: cfg.RabbitMQ.Password,
		VHost:    cfg.RabbitMQ.VHost,
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mq.Close()
	if err := mq.DeclareQueue(cfg.RabbitMQ.Queue); err != nil {
		utils.ErrorLogger.Fatalf("Failed to declare queue %s: %v", cfg.RabbitMQ.Queue, err)
	}

	switch mode {
	case "server":
		runServer(ctx, cfg, mq)
	case "worker":
		runWorker(ctx, cfg, mq)
	default:
		utils.ErrorLogger.Fatalf("unknown mode %q (expected server or worker)", mode)
	}
}

func runServer(ctx context.Context, cfg *config.Config, mq *jobs.Client) {
	gin.SetMode(cfg.Server.GinMode)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	r := router.SetupRouter(router.Deps{
		Config:     cfg,
		DB:         db,
		Dispatcher: jobs.NewQueueDispatcher(mq, cfg.RabbitMQ.Queue),
		Gateway:    services.NewUazapiService(cfg.Uazapi),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.WithError(err).Error("server shutdown")
	}
	utils.InfoLogger.Info("server stopped")
}

func runWorker(ctx context.Context, cfg *config.Config, mq *jobs.Client) {
	if cfg.InternalSecret == "" {
		utils.ErrorLogger.Fatal("missing required environment variables: INTERNAL_SECRET")
	}

	deliveries, err := mq.Consume(cfg.RabbitMQ.Queue, "lifecycle-worker", 1)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to consume %s: %v", cfg.RabbitMQ.Queue, err)
	}

	api := jobs.NewAPIClient(cfg.Server.InternalURL, cfg.InternalSecret, cfg.Uazapi.Timeout)
	utils.InfoLogger.Printf("worker consuming from %s", cfg.RabbitMQ.Queue)
	if err := jobs.NewWorker(api).Run(ctx, deliveries); err != nil && !errors.Is(err, context.Canceled) {
		utils.ErrorLogger.Fatal(err)
	}
	utils.InfoLogger.Info("worker stopped")
}
