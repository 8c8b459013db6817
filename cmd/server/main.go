// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/jason-s-yu/sketch/internal/config"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/handlers"
	"github.com/jason-s-yu/sketch/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	// round history is optional; without Redis the server runs fully in memory
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		var err error
		rdb, err = cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("round history disabled")
		} else {
			defer rdb.Close()
		}
	}
	historian := cache.NewHistorian(rdb, cfg.HistorianQueue, logger)

	store := game.NewRoomStore(game.RoomOptions{
		Logger:        logger,
		Clock:         game.RealClock{},
		RoundEndDelay: cfg.RoundEndDelay,
		Limits:        game.Limits{MaxRounds: cfg.MaxRounds, MaxDrawTime: cfg.MaxDrawTime},
		Historian:     historian,
	})
	defer store.Close()
	gateway := handlers.NewGateway(store, cfg, logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/health"))
	r.Use(middleware.LogMiddleware(logger))

	r.Get("/ws", gateway.ServeWS)
	r.With(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxAge:         300,
	})).Get("/stats", handlers.StatsHandler(store))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      server.Addr,
			"historian": historian.Enabled(),
		}).Info("listening")
		errc <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to serve: %v", err)
		}
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown did not complete cleanly")
	}
	// websocket connections are hijacked, so server.Shutdown leaves them open
	if err := gateway.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("websocket sessions did not close in time")
	}
}
