package repository

import (
	"time"

	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// DispatchFilter critères de listing des dispatches.
// Les filtres sont passés explicitement en argument, jamais via un état
// ambiant partagé.
type DispatchFilter struct {
	Statut    string
	ProduitID string
	MagasinID string // magasin destination
	DateDebut *time.Time
	DateFin   *time.Time
	Limit     int
	Offset    int
}

// DispatchRepository port de persistance des dispatches.
type DispatchRepository interface {
	Create(d *entity.Dispatch) error
	GetByID(id string) (*entity.Dispatch, error)
	// GetForUpdate bloque la ligne du dispatch (SELECT FOR UPDATE) pour
	// sérialiser les enregistrements de livraisons concurrents.
	GetForUpdate(id string) (*entity.Dispatch, error)
	UpdateStatut(id, statut string, dateCompletion *time.Time) error
	List(f DispatchFilter) ([]*entity.Dispatch, error)
	// CountForMonth sert à générer le numéro séquentiel DISP-AAAAMM-NNNN.
	CountForMonth(year int, month time.Month) (int, error)
}
