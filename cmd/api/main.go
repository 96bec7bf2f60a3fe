package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	appstock "github.com/sotramag/tonnage-api/internal/application/stock"
	"github.com/sotramag/tonnage-api/internal/infrastructure/postgres"
	httpRouter "github.com/sotramag/tonnage-api/internal/interfaces/http"
	"github.com/sotramag/tonnage-api/pkg/config"
	"github.com/sotramag/tonnage-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("charger la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion PostgreSQL")
	}
	defer pool.Close()

	produitRepo := postgres.NewProduitRepository(pool)
	magasinRepo := postgres.NewMagasinRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	dispatchRepo := postgres.NewDispatchRepository(pool)
	livraisonRepo := postgres.NewLivraisonRepository(pool)
	mouvementRepo := postgres.NewMouvementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := appstock.NewLedger(txRunner, mouvementRepo, stockRepo, produitRepo, magasinRepo)
	allocator := appdispatch.NewAllocatorUseCase(txRunner, produitRepo, magasinRepo, clientRepo)
	livraison := appdispatch.NewLivraisonUseCase(txRunner)
	reporter := appdispatch.NewReporterUseCase(dispatchRepo, livraisonRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local : http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tonnage API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Allocator: allocator,
		Livraison: livraison,
		Reporter:  reporter,
		Ledger:    ledger,
		Log:       log,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("serveur HTTP")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("serveur HTTP démarré")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("arrêt en cours")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}
	log.Info().Msg("arrêt terminé")
}
