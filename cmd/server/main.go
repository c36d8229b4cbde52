// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jeufa/fadu/internal/auth"
	"github.com/jeufa/fadu/internal/cache"
	"github.com/jeufa/fadu/internal/config"
	"github.com/jeufa/fadu/internal/database"
	"github.com/jeufa/fadu/internal/handlers"
	"github.com/jeufa/fadu/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		// Turn history degrades to direct DB writes without Redis.
		logger.Warnf("redis unavailable, historian queue disabled: %v", err)
	}

	cfg := config.Load()
	srv := handlers.NewGameServer(cfg, logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	// channels
	mux.Handle("/player/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.PlayerWSHandler(srv),
	)))
	mux.Handle("/matchmaking/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.MatchmakingWSHandler(srv),
	)))
	mux.Handle("/session/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(srv),
	)))

	// session endpoints
	mux.Handle("/session/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateSessionHandler(srv),
	)))
	mux.Handle("/session/status/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionStatusHandler(srv),
	)))

	// introspection
	mux.HandleFunc("/ws/connections", handlers.ConnectionsHandler(srv))
	mux.HandleFunc("/matchmaking/queue/info", handlers.QueueInfoHandler(srv))
	mux.HandleFunc("/cards/probabilities", handlers.CardProbabilitiesHandler)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
