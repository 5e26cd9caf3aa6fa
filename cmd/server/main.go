package main

import (
	"log"
	"os"

	"github.com/gambitchess/gambit-backend/internal/controller"
	"github.com/gambitchess/gambit-backend/internal/middleware"
	"github.com/gambitchess/gambit-backend/internal/service"
	"github.com/gambitchess/gambit-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

func main() {
	dataDir := envOr("GAMBIT_DATA_DIR", "data")
	allowOrigin := envOr("GAMBIT_ALLOW_ORIGIN", "http://localhost:5173")
	port := envOr("PORT", "3000")

	archive, err := store.Open(dataDir)
	if err != nil {
		log.Fatalf("open archive at %s: %v", dataDir, err)
	}
	defer archive.Close()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize services
	gameManager := service.NewGameManager(archive)
	gameService := service.NewGameService(gameManager, archive)

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(func(c *websocket.Conn) {
		wsController.HandleConnection(c)
	}, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         []string{allowOrigin},
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Get("/matchmaking/poll", gameController.PollMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gameController.LeaveMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/legal-moves", gameController.GetLegalMoves)

	archiveRoutes := api.Group("/archive")
	archiveRoutes.Get("/stats", gameController.GetArchiveStats)
	archiveRoutes.Get("/:gameId", gameController.GetArchivedGame)
	archiveRoutes.Get("/", gameController.ListArchivedGames)

	log.Fatal(app.Listen(":" + port))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
