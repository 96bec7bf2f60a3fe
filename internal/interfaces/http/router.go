package http

import (
	"github.com/gofiber/fiber/v2"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	appstock "github.com/sotramag/tonnage-api/internal/application/stock"
	"github.com/sotramag/tonnage-api/pkg/logger"
)

// RouterDeps dépendances du routeur.
type RouterDeps struct {
	Allocator *appdispatch.AllocatorUseCase
	Livraison *appdispatch.LivraisonUseCase
	Reporter  *appdispatch.ReporterUseCase
	Ledger    *appstock.Ledger
	Log       *logger.Logger
	JWTSecret string
}

// Router enregistre les routes de l'API. Toutes les routes /api exigent un
// Bearer Token ; la création et l'annulation de dispatch sont réservées au
// rôle manager, l'enregistrement de livraison aux magasiniers et managers.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	dispatchHandler := NewDispatchHandler(deps.Allocator, deps.Livraison, deps.Reporter, deps.Log)
	livraisonHandler := NewLivraisonHandler(deps.Livraison, deps.Log)
	stockHandler := NewStockHandler(deps.Ledger, deps.Log)
	rapportHandler := NewRapportHandler(deps.Reporter)

	dispatches := api.Group("/dispatches")
	dispatches.Post("/", RequireRole(RoleManager), dispatchHandler.Create)
	dispatches.Get("/", dispatchHandler.List)
	dispatches.Get("/:id", dispatchHandler.GetByID)
	dispatches.Post("/:id/annulation", RequireRole(RoleManager), dispatchHandler.Cancel)
	dispatches.Post("/:id/livraisons", RequireRole(RoleMagasinier, RoleManager), livraisonHandler.Record)

	livraisons := api.Group("/livraisons")
	livraisons.Post("/:id/annulation", RequireRole(RoleMagasinier, RoleManager), livraisonHandler.Cancel)

	stocks := api.Group("/stocks")
	stocks.Get("/", stockHandler.GetStock)

	mouvements := api.Group("/mouvements")
	mouvements.Post("/", RequireRole(RoleMagasinier, RoleManager), stockHandler.RegisterMouvement)
	mouvements.Get("/", stockHandler.ListMouvements)

	rapports := api.Group("/rapports")
	rapports.Get("/ecarts", rapportHandler.Ecarts)
}
