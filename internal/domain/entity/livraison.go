package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Types de livraison : quelle sous-allocation du dispatch parent est servie.
const (
	LivraisonTypeClient = "client"
	LivraisonTypeStock  = "stock"
)

// Statuts d'une livraison.
const (
	LivraisonStatutEnregistree = "enregistree"
	LivraisonStatutAnnulee     = "annulee"
)

// Livraison (ou rotation) représente un passage camion confirmant
// l'exécution partielle ou totale d'une sous-allocation d'un dispatch.
// Immuable une fois enregistrée, sauf la transition vers annulee qui doit
// compenser l'entrée en stock si elle avait été appliquée.
type Livraison struct {
	ID             string
	DispatchID     string
	MagasinierID   string
	TypeLivraison  string
	QuantiteLivree decimal.Decimal
	NumeroBon      string
	Transporteur   string
	NumeroCamion   string
	ChauffeurNom   string
	Notes          string
	Statut         string
	DateLivraison  time.Time
}

// Annulee indique si la livraison est annulée (exclue de tous les cumuls).
func (l *Livraison) Annulee() bool {
	return l.Statut == LivraisonStatutAnnulee
}
