package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// StockRepository port de consultation/mise à jour de la projection de stock
// par couple (produit, magasin). Utilisé à l'intérieur des transactions pour
// garantir la cohérence.
type StockRepository interface {
	Get(produitID, magasinID string) (*entity.Stock, error)
	// ApplyDelta ajoute delta (négatif pour une sortie) à la quantité
	// disponible, en créant la ligne au besoin. L'addition est faite par le
	// SGBD en une seule instruction : deux écritures concurrentes sur un
	// couple encore sans ligne s'additionnent au lieu de s'écraser.
	ApplyDelta(produitID, magasinID string, delta decimal.Decimal, at time.Time) error
	// GetForUpdate bloque la ligne (SELECT FOR UPDATE) pour le contrôle de
	// disponibilité avant une sortie. Une ligne absente ne verrouille rien,
	// ce qui reste sûr : les écritures sont des deltas, jamais des valeurs
	// absolues.
	GetForUpdate(produitID, magasinID string) (*entity.Stock, error)
}
