package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sotramag/tonnage-api/internal/domain"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

var _ repository.MouvementRepository = (*MouvementRepo)(nil)

// MouvementRepo implémentation du journal de mouvements sur PostgreSQL
// (pool ou tx). Append-only : insert et select uniquement.
type MouvementRepo struct {
	q Querier
}

// NewMouvementRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewMouvementRepository(q Querier) *MouvementRepo {
	return &MouvementRepo{q: q}
}

const mouvementColumns = `id, type, produit_id, magasin_source_id, magasin_destination_id,
	quantite, reference, transporteur, numero_camion, nom_chauffeur,
	observations, date_mouvement, created_by`

// Create ajoute un mouvement au journal. La référence est unique : un doublon
// remonte ErrValidation.
func (r *MouvementRepo) Create(m *entity.Mouvement) error {
	query := `
		INSERT INTO mouvements (` + mouvementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Type, m.ProduitID, m.MagasinSourceID, m.MagasinDestinationID,
		m.Quantite, m.Reference, m.Transporteur, m.NumeroCamion, m.NomChauffeur,
		m.Observations, m.DateMouvement, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: référence de mouvement dupliquée %s", domain.ErrValidation, m.Reference)
		}
		return fmt.Errorf("insert mouvement: %w", err)
	}
	return nil
}

// ListByProduit liste les mouvements d'un produit, du plus récent au plus ancien.
func (r *MouvementRepo) ListByProduit(produitID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error) {
	query := `SELECT ` + mouvementColumns + ` FROM mouvements WHERE produit_id = $1`
	return r.list(query, produitID, from, to, limit, offset)
}

// ListByMagasin liste les mouvements touchant un magasin (source ou destination).
func (r *MouvementRepo) ListByMagasin(magasinID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error) {
	query := `SELECT ` + mouvementColumns + ` FROM mouvements
		WHERE (magasin_source_id = $1 OR magasin_destination_id = $1)`
	return r.list(query, magasinID, from, to, limit, offset)
}

func (r *MouvementRepo) list(query, keyID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error) {
	args := []any{keyID}
	i := 2
	if from != nil {
		query += fmt.Sprintf(" AND date_mouvement >= $%d", i)
		args = append(args, *from)
		i++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date_mouvement <= $%d", i)
		args = append(args, *to)
		i++
	}
	query += fmt.Sprintf(" ORDER BY date_mouvement DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mouvements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Mouvement
	for rows.Next() {
		var m entity.Mouvement
		if err := rows.Scan(
			&m.ID, &m.Type, &m.ProduitID, &m.MagasinSourceID, &m.MagasinDestinationID,
			&m.Quantite, &m.Reference, &m.Transporteur, &m.NumeroCamion, &m.NomChauffeur,
			&m.Observations, &m.DateMouvement, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan mouvement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
