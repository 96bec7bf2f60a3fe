package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// MouvementRequest body pour POST /api/mouvements.
// entree : magasin_destination_id requis. sortie : magasin_source_id requis.
// transfert : les deux. dispatch n'est pas accepté ici (créé par l'allocation).
type MouvementRequest struct {
	Type                  string          `json:"type"`
	ProduitID             string          `json:"produit_id"`
	MagasinSourceID       string          `json:"magasin_source_id,omitempty"`
	MagasinDestinationID  string          `json:"magasin_destination_id,omitempty"`
	Quantite              decimal.Decimal `json:"quantite"`
	Reference             string          `json:"reference,omitempty"`
	Transporteur          string          `json:"transporteur,omitempty"`
	NumeroCamion          string          `json:"numero_camion,omitempty"`
	NomChauffeur          string          `json:"nom_chauffeur,omitempty"`
	Observations          string          `json:"observations,omitempty"`
	AutoriserStockNegatif bool            `json:"autoriser_stock_negatif,omitempty"`
}

// StockResponse disponibilité courante d'un couple (produit, magasin).
type StockResponse struct {
	ProduitID          string          `json:"produit_id"`
	MagasinID          string          `json:"magasin_id"`
	QuantiteDisponible decimal.Decimal `json:"quantite_disponible"`
}

// MouvementResponse mouvement enregistré.
type MouvementResponse struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	ProduitID            string          `json:"produit_id"`
	MagasinSourceID      *string         `json:"magasin_source_id,omitempty"`
	MagasinDestinationID *string         `json:"magasin_destination_id,omitempty"`
	Quantite             decimal.Decimal `json:"quantite"`
	Reference            string          `json:"reference"`
	DateMouvement        time.Time       `json:"date_mouvement"`
}

// FromMouvement convertit une entrée du journal en réponse HTTP.
func FromMouvement(m *entity.Mouvement) MouvementResponse {
	return MouvementResponse{
		ID:                   m.ID,
		Type:                 m.Type,
		ProduitID:            m.ProduitID,
		MagasinSourceID:      m.MagasinSourceID,
		MagasinDestinationID: m.MagasinDestinationID,
		Quantite:             m.Quantite,
		Reference:            m.Reference,
		DateMouvement:        m.DateMouvement,
	}
}
