package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statuts d'un dispatch.
const (
	DispatchStatutPlanifie = "planifie"
	DispatchStatutEnCours  = "en_cours"
	DispatchStatutComplete = "complete"
	DispatchStatutAnnule   = "annule"
)

// Types de dispatch, dérivés de la répartition client/stock.
const (
	DispatchTypeDirectClient = "direct_client"
	DispatchTypeStockMagasin = "stock_magasin"
	DispatchTypeMixte        = "mixte"
)

// Dispatch représente une décision d'affectation : une quantité de produit,
// issue d'une cargaison navire ou du stock d'un magasin source, répartie
// entre une livraison directe client et une mise en stock au magasin
// destination. Invariant : QuantiteClient + QuantiteStock == QuantiteTotale
// (tolérance 0.01 tonne). Jamais supprimé physiquement ; l'annulation est
// une transition de statut.
type Dispatch struct {
	ID                   string
	NumeroDispatch       string
	ManagerID            string
	ClientID             string
	ProduitID            string
	MagasinSourceID      string
	MagasinDestinationID string
	QuantiteTotale       decimal.Decimal
	QuantiteClient       decimal.Decimal
	QuantiteStock        decimal.Decimal
	TypeDispatch         string
	Statut               string
	Notes                string
	DateCreation         time.Time
	DateCompletion       *time.Time
}

// DeriveTypeDispatch détermine le type selon la répartition des quantités.
func DeriveTypeDispatch(quantiteClient, quantiteStock decimal.Decimal) string {
	switch {
	case quantiteClient.IsPositive() && quantiteStock.IsPositive():
		return DispatchTypeMixte
	case quantiteClient.IsPositive():
		return DispatchTypeDirectClient
	default:
		return DispatchTypeStockMagasin
	}
}
