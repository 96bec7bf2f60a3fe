package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock est la projection de quantité courante pour un couple
// (produit, magasin). Dérivée des mouvements ; matérialisée pour les
// consultations rapides. Jamais négative en fonctionnement normal.
type Stock struct {
	ProduitID          string
	MagasinID          string
	QuantiteDisponible decimal.Decimal
	UpdatedAt          time.Time
}
