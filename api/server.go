package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/spicelanes/game-server/api/handlers"
	"github.com/spicelanes/game-server/api/middleware"
	"github.com/spicelanes/game-server/spicelanes"
)

// Server wraps the fiber app and its route wiring.
type Server struct {
	app  *fiber.App
	addr string
}

// New builds the HTTP surface over an assembled WebApp.
func New(cfg spicelanes.ServerConfig, webApp *handlers.WebApp) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Spice Lanes API",
		ServerHeader: "SpiceLanes",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(middleware.LoggingMiddleware())
	app.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))

	setupRoutes(app, webApp)

	return &Server{app: app, addr: cfg.Addr()}
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api")

	// Read surface.
	api.Get("/players/:address", handlers.PlayerState(webApp))
	api.Get("/players/:address/registered", handlers.Registered(webApp))
	api.Get("/players/:address/ships", handlers.ShipsByOwner(webApp))
	api.Get("/planets", handlers.Planets(webApp))
	api.Get("/planets/:id", handlers.PlanetDetail(webApp))
	api.Get("/travel/cost", handlers.TravelCost(webApp))
	api.Get("/ships/search", handlers.ShipSearch(webApp))
	api.Get("/ships/prices", handlers.ShipPrices(webApp))
	api.Get("/ships/:id", handlers.ShipDetail(webApp))
	api.Get("/mining", handlers.MiningInfo(webApp))
	api.Get("/market/quote", handlers.Quote(webApp))

	// Write surface. Mutations return the final state synchronously, so
	// clients never have to refetch on a timer.
	api.Post("/onboard", handlers.Onboard(webApp))
	api.Post("/travel", handlers.StartTravel(webApp))
	api.Post("/travel/complete", handlers.CompleteTravel(webApp))
	api.Post("/ships/buy", handlers.BuyShip(webApp))
	api.Post("/ships/activate", handlers.ActivateShip(webApp))
	api.Post("/ships/refuel", handlers.RefuelShip(webApp))
	api.Post("/mine", handlers.Mine(webApp))
	api.Post("/market/trade", handlers.ExecuteTrade(webApp))

	// Super-app integration.
	api.Post("/verify-world-id", handlers.VerifyWorldID(webApp))
	api.Post("/initiate-payment", handlers.InitiatePayment(webApp))
	api.Post("/verify-payment", handlers.VerifyPayment(webApp))
}

// Listen blocks serving HTTP until Shutdown.
func (s *Server) Listen() error {
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
