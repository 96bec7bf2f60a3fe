package http

import (
	"github.com/gofiber/fiber/v2"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	"github.com/sotramag/tonnage-api/internal/application/dto"
	"github.com/sotramag/tonnage-api/pkg/logger"
)

// LivraisonHandler gère l'enregistrement et l'annulation des livraisons (protégé).
type LivraisonHandler struct {
	uc  *appdispatch.LivraisonUseCase
	log *logger.Logger
}

// NewLivraisonHandler construit le handler.
func NewLivraisonHandler(uc *appdispatch.LivraisonUseCase, log *logger.Logger) *LivraisonHandler {
	return &LivraisonHandler{uc: uc, log: log}
}

// Record godoc
// @Summary      Enregistrer une livraison (rotation)
// @Tags         livraisons
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID du dispatch"
// @Param        body  body  dto.RecordLivraisonRequest  true  "type_livraison, quantite_livree, transporteur, numero_camion, chauffeur_nom"
// @Success      201   {object}  dto.LivraisonResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id}/livraisons [post]
func (h *LivraisonHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordLivraisonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	l, err := h.uc.RecordLivraison(c.Context(), c.Params("id"), appdispatch.RecordLivraisonInput{
		MagasinierID:   GetUserID(c),
		TypeLivraison:  in.TypeLivraison,
		QuantiteLivree: in.QuantiteLivree,
		Transporteur:   in.Transporteur,
		NumeroCamion:   in.NumeroCamion,
		ChauffeurNom:   in.ChauffeurNom,
		Notes:          in.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	h.log.Info().
		Str("livraison_id", l.ID).
		Str("dispatch_id", l.DispatchID).
		Str("numero_bon", l.NumeroBon).
		Str("type", l.TypeLivraison).
		Str("quantite", l.QuantiteLivree.String()).
		Msg("livraison enregistrée")
	return c.Status(fiber.StatusCreated).JSON(dto.FromLivraison(l))
}

// Cancel godoc
// @Summary      Annuler une livraison
// @Description  Idempotent : annuler une livraison déjà annulée est un no-op.
// @Tags         livraisons
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la livraison"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/livraisons/{id}/annulation [post]
func (h *LivraisonHandler) Cancel(c *fiber.Ctx) error {
	livraisonID := c.Params("id")
	if err := h.uc.CancelLivraison(c.Context(), livraisonID, GetUserID(c)); err != nil {
		return domainError(c, err)
	}
	h.log.Info().Str("livraison_id", livraisonID).Msg("livraison annulée")
	return c.JSON(fiber.Map{"message": "livraison annulée"})
}
