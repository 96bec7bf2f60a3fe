package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Types de mouvement de stock.
const (
	MouvementTypeDispatch  = "dispatch"  // trace d'allocation, ne modifie pas le stock
	MouvementTypeEntree    = "entree"    // entrée au magasin destination
	MouvementTypeSortie    = "sortie"    // sortie du magasin source
	MouvementTypeTransfert = "transfert" // sortie source + entrée destination, atomique
)

// Mouvement est l'enregistrement append-only du journal de stock.
// Un mouvement de type dispatch trace la décision d'allocation sans toucher
// à la projection ; seuls entree, sortie et transfert modifient
// quantite_disponible.
type Mouvement struct {
	ID                   string
	Type                 string
	ProduitID            string
	MagasinSourceID      *string // nul pour une entrée pure
	MagasinDestinationID *string // nul pour une sortie pure
	Quantite             decimal.Decimal
	Reference            string // bon de livraison, numéro de dispatch, etc.
	Transporteur         string
	NumeroCamion         string
	NomChauffeur         string
	Observations         string
	DateMouvement        time.Time
	CreatedBy            string
}
