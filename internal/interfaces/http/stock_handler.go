package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sotramag/tonnage-api/internal/application/dto"
	appstock "github.com/sotramag/tonnage-api/internal/application/stock"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/pkg/logger"
)

// StockHandler gère la consultation du stock et l'enregistrement direct de
// mouvements (protégé).
type StockHandler struct {
	ledger *appstock.Ledger
	log    *logger.Logger
}

// NewStockHandler construit le handler.
func NewStockHandler(ledger *appstock.Ledger, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// GetStock godoc
// @Summary      Disponibilité courante d'un couple (produit, magasin)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        produit_id  query  string  true  "ID du produit"
// @Param        magasin_id  query  string  true  "ID du magasin"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stocks [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	produitID := c.Query("produit_id")
	magasinID := c.Query("magasin_id")
	quantite, err := h.ledger.GetAvailable(c.Context(), produitID, magasinID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProduitID:          produitID,
		MagasinID:          magasinID,
		QuantiteDisponible: quantite,
	})
}

// ListMouvements godoc
// @Summary      Journal des mouvements
// @Description  Consultation par produit ou par magasin (exactement une clé),
// @Description  du plus récent au plus ancien.
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        produit_id  query  string  false  "ID du produit"
// @Param        magasin_id  query  string  false  "ID du magasin (source ou destination)"
// @Param        date_debut  query  string  false  "AAAA-MM-JJ"
// @Param        date_fin    query  string  false  "AAAA-MM-JJ"
// @Success      200  {array}  dto.MouvementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/mouvements [get]
func (h *StockHandler) ListMouvements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pagination invalide"})
	}
	page.DefaultPage()

	filter := appstock.MouvementFilter{
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

	mouvements, err := h.ledger.ListMouvements(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.MouvementResponse, 0, len(mouvements))
	for _, m := range mouvements {
		out = append(out, dto.FromMouvement(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "mouvements": out})
}

// RegisterMouvement godoc
// @Summary      Enregistrer un mouvement de stock
// @Description  entree, sortie ou transfert. Les mouvements de type dispatch
// @Description  sont créés par l'allocation, pas par cette route.
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MouvementRequest  true  "type, produit_id, magasin(s), quantite"
// @Success      201   {object}  dto.MouvementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/mouvements [post]
func (h *StockHandler) RegisterMouvement(c *fiber.Ctx) error {
	var in dto.MouvementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	if in.Type == entity.MouvementTypeDispatch {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "un mouvement dispatch est créé par l'allocation"})
	}
	m, err := h.ledger.ApplyMouvement(c.Context(), appstock.MouvementInput{
		Type:                  in.Type,
		ProduitID:             in.ProduitID,
		MagasinSourceID:       in.MagasinSourceID,
		MagasinDestinationID:  in.MagasinDestinationID,
		Quantite:              in.Quantite,
		Reference:             in.Reference,
		Transporteur:          in.Transporteur,
		NumeroCamion:          in.NumeroCamion,
		NomChauffeur:          in.NomChauffeur,
		Observations:          in.Observations,
		UserID:                GetUserID(c),
		AutoriserStockNegatif: in.AutoriserStockNegatif,
	})
	if err != nil {
		return domainError(c, err)
	}
	h.log.Info().
		Str("mouvement_id", m.ID).
		Str("type", m.Type).
		Str("produit_id", m.ProduitID).
		Str("reference", m.Reference).
		Str("quantite", m.Quantite.String()).
		Msg("mouvement enregistré")
	return c.Status(fiber.StatusCreated).JSON(dto.FromMouvement(m))
}
