package http

import (
	"github.com/gofiber/fiber/v2"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	"github.com/sotramag/tonnage-api/internal/application/dto"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// RapportHandler expose le rapport des écarts dispatché/reçu (protégé).
type RapportHandler struct {
	reporter *appdispatch.ReporterUseCase
}

// NewRapportHandler construit le handler.
func NewRapportHandler(reporter *appdispatch.ReporterUseCase) *RapportHandler {
	return &RapportHandler{reporter: reporter}
}

// Ecarts godoc
// @Summary      Rapport des écarts dispatché/reçu
// @Description  Agrégation en lecture seule sur les dispatches non annulés :
// @Description  quantite_dispatchee, quantite_recue, ecart et classification
// @Description  conforme | manque | exces (tolérance 0.01).
// @Tags         rapports
// @Security     Bearer
// @Produce      json
// @Param        produit_id  query  string  false  "Filtrer par produit"
// @Param        magasin_id  query  string  false  "Filtrer par magasin destination"
// @Param        date_debut  query  string  false  "AAAA-MM-JJ"
// @Param        date_fin    query  string  false  "AAAA-MM-JJ"
// @Param        type_ecart  query  string  false  "tous | conforme | manque | exces"
// @Success      200  {array}  dto.LigneEcartResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/rapports/ecarts [get]
func (h *RapportHandler) Ecarts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pagination invalide"})
	}
	page.DefaultPage()

	filter := appdispatch.EcartFilter{
		DispatchFilter: repository.DispatchFilter{
			ProduitID: c.Query("produit_id"),
			MagasinID: c.Query("magasin_id"),
			Limit:     page.Limit,
			Offset:    page.Offset,
		},
		TypeEcart: c.Query("type_ecart"),
	}
	var err error
	if filter.DateDebut, err = parseDateQuery(c.Query("date_debut")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_debut invalide (AAAA-MM-JJ)"})
	}
	if filter.DateFin, err = parseDateQuery(c.Query("date_fin")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_fin invalide (AAAA-MM-JJ)"})
	}

	lignes, err := h.reporter.GetRapportEcarts(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.LigneEcartResponse, 0, len(lignes))
	for _, l := range lignes {
		out = append(out, dto.FromLigneEcart(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "ecarts": out})
}
