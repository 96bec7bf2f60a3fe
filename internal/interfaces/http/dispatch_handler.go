package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	"github.com/sotramag/tonnage-api/internal/application/dto"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
	"github.com/sotramag/tonnage-api/pkg/logger"
)

// DispatchHandler gère les requêtes HTTP du moteur de dispatch (protégé).
type DispatchHandler struct {
	allocator *appdispatch.AllocatorUseCase
	livraison *appdispatch.LivraisonUseCase
	reporter  *appdispatch.ReporterUseCase
	log       *logger.Logger
}

// NewDispatchHandler construit le handler.
func NewDispatchHandler(
	allocator *appdispatch.AllocatorUseCase,
	livraison *appdispatch.LivraisonUseCase,
	reporter *appdispatch.ReporterUseCase,
	log *logger.Logger,
) *DispatchHandler {
	return &DispatchHandler{allocator: allocator, livraison: livraison, reporter: reporter, log: log}
}

// Create godoc
// @Summary      Créer un dispatch
// @Tags         dispatches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDispatchRequest  true  "répartition quantite_client / quantite_stock"
// @Success      201   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatches [post]
func (h *DispatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	d, err := h.allocator.CreateDispatch(c.Context(), appdispatch.CreateDispatchInput{
		ManagerID:            GetUserID(c),
		ClientID:             in.ClientID,
		ProduitID:            in.ProduitID,
		MagasinSourceID:      in.MagasinSourceID,
		MagasinDestinationID: in.MagasinDestinationID,
		QuantiteTotale:       in.QuantiteTotale,
		QuantiteClient:       in.QuantiteClient,
		QuantiteStock:        in.QuantiteStock,
		Notes:                in.Notes,
		SourceExterne:        in.SourceExterne,
	})
	if err != nil {
		return domainError(c, err)
	}
	h.log.Info().
		Str("dispatch_id", d.ID).
		Str("numero", d.NumeroDispatch).
		Str("produit_id", d.ProduitID).
		Str("quantite_totale", d.QuantiteTotale.String()).
		Msg("dispatch créé")
	return c.Status(fiber.StatusCreated).JSON(dto.FromDispatch(d))
}

// GetByID godoc
// @Summary      Dispatch avec livraisons et avancement
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID du dispatch"
// @Success      200  {object}  dto.DispatchProgressResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id} [get]
func (h *DispatchHandler) GetByID(c *fiber.Ctx) error {
	progress, err := h.reporter.GetDispatchProgress(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.FromProgress(progress))
}

// List godoc
// @Summary      Lister les dispatches avec avancement
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        statut      query  string  false  "planifie | en_cours | complete | annule"
// @Param        produit_id  query  string  false  "Filtrer par produit"
// @Param        magasin_id  query  string  false  "Filtrer par magasin destination"
// @Param        date_debut  query  string  false  "AAAA-MM-JJ"
// @Param        date_fin    query  string  false  "AAAA-MM-JJ"
// @Success      200  {array}  dto.DispatchProgressResponse
// @Router       /api/dispatches [get]
func (h *DispatchHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pagination invalide"})
	}
	page.DefaultPage()

	filter := repository.DispatchFilter{
		Statut:    c.Query("statut"),
		ProduitID: c.Query("produit_id"),
		MagasinID: c.Query("magasin_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	var err error
	if filter.DateDebut, err = parseDateQuery(c.Query("date_debut")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_debut invalide (AAAA-MM-JJ)"})
	}
	if filter.DateFin, err = parseDateQuery(c.Query("date_fin")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_fin invalide (AAAA-MM-JJ)"})
	}

	list, err := h.reporter.ListDispatchesWithProgress(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.DispatchProgressResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromProgress(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "dispatches": out})
}

// Cancel godoc
// @Summary      Annuler un dispatch
// @Description  Permis depuis planifie ou en_cours ; les entrées déjà
// @Description  appliquées sont reversées. Rejeté si la marchandise a déjà
// @Description  quitté le magasin destination.
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID du dispatch"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id}/annulation [post]
func (h *DispatchHandler) Cancel(c *fiber.Ctx) error {
	dispatchID := c.Params("id")
	if err := h.livraison.CancelDispatch(c.Context(), dispatchID, GetUserID(c)); err != nil {
		return domainError(c, err)
	}
	h.log.Info().Str("dispatch_id", dispatchID).Msg("dispatch annulé")
	return c.JSON(fiber.Map{"message": "dispatch annulé"})
}

// parseDateQuery parse un paramètre de date AAAA-MM-JJ, nil si vide.
func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
