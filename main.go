package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weave-app/weave-server/catalog"
	"github.com/weave-app/weave-server/config"
	"github.com/weave-app/weave-server/database"
	"github.com/weave-app/weave-server/middleware"
	"github.com/weave-app/weave-server/routes"
	"github.com/weave-app/weave-server/story"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Logger = logger

	if err := database.Connect(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	store := database.NewStore(database.DB)

	cat := catalog.NewDefault()
	var selector catalog.AuthorSelector = catalog.FirstAuthor{}
	if cfg.UsePreferredAuthors {
		selector = catalog.PreferredAuthor{Prefs: store}
	}

	generator := story.NewGeminiClient(
		cfg.GeminiAPIKey,
		cfg.GeminiBaseURL,
		cfg.GenerationTimeout,
		cfg.SamplingBounds(),
		logger,
	)
	svc := story.NewService(store, generator, cat, selector, logger)
	routes.Setup(svc, store, cat)

	app := fiber.New(fiber.Config{
		Views: html.New("./views", ".html"),
	})
	app.Use(middleware.RequestLogger(logger))

	setupRoutes(app)

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	logger.Fatal().Err(app.Listen(":" + cfg.Port)).Msg("server stopped")
}

func setupRoutes(app *fiber.App) {
	app.Post("/register", routes.Register)

	app.Post("/story/generate", routes.GenerateStory)
	app.Post("/story/continue", routes.ContinueStory)
	app.Get("/story", routes.GetStories)
	app.Get("/story/:id", routes.GetStoryDetail)
	app.Get("/story/:id/read", routes.ReadStory)

	app.Get("/genres", routes.GetGenres)
	app.Get("/authors", routes.GetAuthors)
	app.Get("/suggestions", routes.GetSuggestions)

	app.Get("/health", routes.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
