package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sahasajib/invo/internal/config"
	"github.com/sahasajib/invo/internal/db"
	"github.com/sahasajib/invo/internal/logger"
	"github.com/sahasajib/invo/internal/mailer"
	"github.com/sahasajib/invo/internal/pdf"
	"github.com/sahasajib/invo/internal/services"
	"github.com/sahasajib/invo/internal/storage"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.App.Dev)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := db.Connect(cfg.Database, os.Getenv("DB_DEBUG") == "1")
	if err != nil {
		log.Fatalw("database connection failed", "error", err)
	}

	if *migrateOnlyFlag {
		if err := db.MigrateSQL(cfg.Database.URL()); err != nil {
			log.Fatalw("migration failed", "error", err)
		}
		log.Infow("migrations completed")
		return
	}

	// SQL migrations when enabled, AutoMigrate as dev fallback
	if cfg.App.Migrations {
		if err := db.MigrateSQL(cfg.Database.URL()); err != nil {
			log.Fatalw("migration failed", "error", err)
		}
	} else if err := db.Migrate(dbConn); err != nil {
		log.Fatalw("automigrate failed", "error", err)
	}

	files, err := buildStore(cfg.Storage)
	if err != nil {
		log.Fatalw("file store init failed", "error", err)
	}

	svc := services.NewInvoiceService(dbConn, pdf.NewGenerator(), files, mailer.NewResend(cfg.Mail), log)
	appHandler := NewApp(dbConn, svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(log, appHandler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("error during shutdown", "error", err)
	}
	log.Infow("server stopped gracefully")
}

// buildStore selects the PDF file store from config.
func buildStore(cfg config.StorageConfig) (storage.Store, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3(context.Background(), cfg.Bucket, cfg.Region, cfg.Prefix)
	}
	return storage.NewLocal(cfg.Dir), nil
}

// withLogging adds request logging middleware.
func withLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Infow("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
