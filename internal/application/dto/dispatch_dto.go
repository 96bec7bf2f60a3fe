package dto

import (
	"time"

	"github.com/shopspring/decimal"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// CreateDispatchRequest body pour POST /api/dispatches.
type CreateDispatchRequest struct {
	ClientID             string          `json:"client_id"`
	ProduitID            string          `json:"produit_id"`
	MagasinSourceID      string          `json:"magasin_source_id"`
	MagasinDestinationID string          `json:"magasin_destination_id"`
	QuantiteTotale       decimal.Decimal `json:"quantite_totale"`
	QuantiteClient       decimal.Decimal `json:"quantite_client"`
	QuantiteStock        decimal.Decimal `json:"quantite_stock"`
	Notes                string          `json:"notes,omitempty"`
	SourceExterne        bool            `json:"source_externe,omitempty"`
}

// RecordLivraisonRequest body pour POST /api/dispatches/:id/livraisons.
type RecordLivraisonRequest struct {
	TypeLivraison  string          `json:"type_livraison"`
	QuantiteLivree decimal.Decimal `json:"quantite_livree"`
	Transporteur   string          `json:"transporteur"`
	NumeroCamion   string          `json:"numero_camion"`
	ChauffeurNom   string          `json:"chauffeur_nom"`
	Notes          string          `json:"notes,omitempty"`
}

// DispatchResponse représentation HTTP d'un dispatch.
type DispatchResponse struct {
	ID                   string          `json:"id"`
	NumeroDispatch       string          `json:"numero_dispatch"`
	ManagerID            string          `json:"manager_id"`
	ClientID             string          `json:"client_id"`
	ProduitID            string          `json:"produit_id"`
	MagasinSourceID      string          `json:"magasin_source_id"`
	MagasinDestinationID string          `json:"magasin_destination_id"`
	QuantiteTotale       decimal.Decimal `json:"quantite_totale"`
	QuantiteClient       decimal.Decimal `json:"quantite_client"`
	QuantiteStock        decimal.Decimal `json:"quantite_stock"`
	TypeDispatch         string          `json:"type_dispatch"`
	Statut               string          `json:"statut"`
	Notes                string          `json:"notes,omitempty"`
	DateCreation         time.Time       `json:"date_creation"`
	DateCompletion       *time.Time      `json:"date_completion,omitempty"`
}

// LivraisonResponse représentation HTTP d'une livraison.
type LivraisonResponse struct {
	ID             string          `json:"id"`
	DispatchID     string          `json:"dispatch_id"`
	MagasinierID   string          `json:"magasinier_id"`
	TypeLivraison  string          `json:"type_livraison"`
	QuantiteLivree decimal.Decimal `json:"quantite_livree"`
	NumeroBon      string          `json:"numero_bon"`
	Transporteur   string          `json:"transporteur"`
	NumeroCamion   string          `json:"numero_camion"`
	ChauffeurNom   string          `json:"chauffeur_nom"`
	Notes          string          `json:"notes,omitempty"`
	Statut         string          `json:"statut"`
	DateLivraison  time.Time       `json:"date_livraison"`
}

// SousAllocationDTO avancement d'une sous-allocation.
type SousAllocationDTO struct {
	QuantitePrevue   decimal.Decimal `json:"quantite_prevue"`
	QuantiteLivree   decimal.Decimal `json:"quantite_livree"`
	QuantiteRestante decimal.Decimal `json:"quantite_restante"`
}

// DispatchProgressResponse dispatch + livraisons + avancement calculé.
type DispatchProgressResponse struct {
	Dispatch   DispatchResponse    `json:"dispatch"`
	Livraisons []LivraisonResponse `json:"livraisons"`
	Client     SousAllocationDTO   `json:"client"`
	Stock      SousAllocationDTO   `json:"stock"`
	Total      SousAllocationDTO   `json:"total"`
}

// LigneEcartResponse une ligne du rapport des écarts.
type LigneEcartResponse struct {
	DispatchID           string          `json:"dispatch_id"`
	NumeroDispatch       string          `json:"numero_dispatch"`
	ProduitID            string          `json:"produit_id"`
	MagasinDestinationID string          `json:"magasin_destination_id"`
	QuantiteDispatchee   decimal.Decimal `json:"quantite_dispatchee"`
	QuantiteRecue        decimal.Decimal `json:"quantite_recue"`
	Ecart                decimal.Decimal `json:"ecart"`
	EcartPourcentage     decimal.Decimal `json:"ecart_pourcentage"`
	Statut               string          `json:"statut"`
}

// FromDispatch convertit l'entité en réponse HTTP.
func FromDispatch(d *entity.Dispatch) DispatchResponse {
	return DispatchResponse{
		ID:                   d.ID,
		NumeroDispatch:       d.NumeroDispatch,
		ManagerID:            d.ManagerID,
		ClientID:             d.ClientID,
		ProduitID:            d.ProduitID,
		MagasinSourceID:      d.MagasinSourceID,
		MagasinDestinationID: d.MagasinDestinationID,
		QuantiteTotale:       d.QuantiteTotale,
		QuantiteClient:       d.QuantiteClient,
		QuantiteStock:        d.QuantiteStock,
		TypeDispatch:         d.TypeDispatch,
		Statut:               d.Statut,
		Notes:                d.Notes,
		DateCreation:         d.DateCreation,
		DateCompletion:       d.DateCompletion,
	}
}

// FromLivraison convertit l'entité en réponse HTTP.
func FromLivraison(l *entity.Livraison) LivraisonResponse {
	return LivraisonResponse{
		ID:             l.ID,
		DispatchID:     l.DispatchID,
		MagasinierID:   l.MagasinierID,
		TypeLivraison:  l.TypeLivraison,
		QuantiteLivree: l.QuantiteLivree,
		NumeroBon:      l.NumeroBon,
		Transporteur:   l.Transporteur,
		NumeroCamion:   l.NumeroCamion,
		ChauffeurNom:   l.ChauffeurNom,
		Notes:          l.Notes,
		Statut:         l.Statut,
		DateLivraison:  l.DateLivraison,
	}
}

// FromProgress convertit l'avancement en réponse HTTP.
func FromProgress(p *appdispatch.DispatchProgress) DispatchProgressResponse {
	livraisons := make([]LivraisonResponse, 0, len(p.Livraisons))
	for _, l := range p.Livraisons {
		livraisons = append(livraisons, FromLivraison(l))
	}
	return DispatchProgressResponse{
		Dispatch:   FromDispatch(p.Dispatch),
		Livraisons: livraisons,
		Client:     fromSousAllocation(p.Client),
		Stock:      fromSousAllocation(p.Stock),
		Total:      fromSousAllocation(p.Total),
	}
}

// FromLigneEcart convertit une ligne d'écart en réponse HTTP.
func FromLigneEcart(l *appdispatch.LigneEcart) LigneEcartResponse {
	return LigneEcartResponse{
		DispatchID:           l.Dispatch.ID,
		NumeroDispatch:       l.Dispatch.NumeroDispatch,
		ProduitID:            l.Dispatch.ProduitID,
		MagasinDestinationID: l.Dispatch.MagasinDestinationID,
		QuantiteDispatchee:   l.QuantiteDispatchee,
		QuantiteRecue:        l.QuantiteRecue,
		Ecart:                l.Ecart,
		EcartPourcentage:     l.EcartPourcentage,
		Statut:               l.Statut,
	}
}

func fromSousAllocation(s appdispatch.SousAllocationProgress) SousAllocationDTO {
	return SousAllocationDTO{
		QuantitePrevue:   s.QuantitePrevue,
		QuantiteLivree:   s.QuantiteLivree,
		QuantiteRestante: s.QuantiteRestante,
	}
}
