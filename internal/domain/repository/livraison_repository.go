package repository

import (
	"time"

	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// LivraisonRepository port de persistance des livraisons (rotations).
type LivraisonRepository interface {
	Create(l *entity.Livraison) error
	GetByID(id string) (*entity.Livraison, error)
	UpdateStatut(id, statut string) error
	ListByDispatch(dispatchID string) ([]*entity.Livraison, error)
	// CountForDay sert à générer le numéro de bon BLC/BLS-AAAAMMJJ-NNN.
	CountForDay(day time.Time) (int, error)
}
