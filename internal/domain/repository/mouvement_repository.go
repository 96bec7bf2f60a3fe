package repository

import (
	"time"

	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// MouvementRepository port de persistance du journal de mouvements.
// Le journal est append-only : pas d'update ni de delete.
type MouvementRepository interface {
	Create(m *entity.Mouvement) error
	ListByProduit(produitID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error)
	ListByMagasin(magasinID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error)
}
