package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/textra/chorebot/internal/config"
	"github.com/textra/chorebot/internal/database"
	"github.com/textra/chorebot/internal/domain/service"
	"github.com/textra/chorebot/internal/handlers"
	"github.com/textra/chorebot/internal/infra/logger"
	"github.com/textra/chorebot/internal/transport/twilio"
	"github.com/textra/chorebot/migrator/sqlite"
)

func main() {
	// .env is optional; real env variables take precedence
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Environment)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Info("Running migrations...")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Migrations completed successfully")

	if cfg.MockMode() {
		log.Warn("No Twilio credentials configured, transport running in mock mode")
	}

	dm := database.NewInstance(db)
	transport := twilio.New(cfg, log)
	services := service.NewInstance(dm, transport, cfg.DeliveryMode, log)

	// The due check fires every minute by default. Due-ness is an exact
	// HH:MM match, so running less often would silently skip bots.
	cronEngine := cron.New()
	_, err = cronEngine.AddFunc(cfg.DueCycleCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := services.Cycle.RunDueCycle(ctx, time.Now().UTC()); err != nil {
			log.WithError(err).Error("Due cycle failed")
		}
	})
	if err != nil {
		log.Fatalf("Failed to register due cycle job: %v", err)
	}
	cronEngine.Start()

	handler := handlers.New(services, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/twilio/inbound", handler.HandleInboundSMS)
	mux.HandleFunc("/run-due", handler.HandleRunDue)
	mux.HandleFunc("/send-test", handler.HandleSendTest)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	<-cronEngine.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Shut down gracefully")
}
