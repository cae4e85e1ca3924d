package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"showsync/config"
	"showsync/handlers"
	"showsync/internal/database"
	"showsync/services/scheduler"
	"showsync/services/sync"
	"showsync/services/timeline"
	"showsync/services/trakt"
	"showsync/utils"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] invalid configuration: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}))
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	syncService := sync.New(
		trakt.NewClient(cfg.TraktClientID),
		timeline.NewClient(cfg.TimelineAPIKey),
		db.Repository,
	)
	syncService.SetDebug(cfg.LogDebug)

	sched := scheduler.NewService(syncService, cfg.SyncOnStart)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[main] failed to start scheduler: %v", err)
	}

	router := utils.NewRouter()
	handlers.RegisterRoutes(router,
		handlers.NewLaunchDataHandler(db.Repository),
		handlers.NewPebbleConfigHandler(cfg.TraktClientID, cfg.TraktClientSecret, cfg.BaseURL),
	)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[main] http server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] http shutdown error: %v", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Printf("[main] scheduler stop error: %v", err)
	}
}
