package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/logger"
	"github.com/delveworks/dungeon-delve-engine/internal/turnlog"
	"github.com/delveworks/dungeon-delve-engine/internal/ws"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("APP_ADDR", ":8080"), "listen address")
	turnDir := flag.String("turn-dir", envOr("TURN_DIR", "data/turns"), "directory for persisted turn records")
	debug := flag.Bool("debug", os.Getenv("APP_DEBUG") == "true", "development logging and gin debug mode")
	flag.Parse()

	logger.Init(*debug)
	defer logger.Sync()
	log := logger.Get()

	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	turns, err := turnlog.NewStore(*turnDir)
	if err != nil {
		log.Fatal("turn store init failed", zap.String("dir", *turnDir), zap.Error(err))
	}

	hub := ws.NewHub()
	manager := NewGameManager(hub, turns)
	server := NewServer(manager, turns, hub)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("addr", *addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}
