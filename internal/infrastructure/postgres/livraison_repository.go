package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

var _ repository.LivraisonRepository = (*LivraisonRepo)(nil)

// LivraisonRepo implémentation de LivraisonRepository sur PostgreSQL (pool ou tx).
type LivraisonRepo struct {
	q Querier
}

// NewLivraisonRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewLivraisonRepository(q Querier) *LivraisonRepo {
	return &LivraisonRepo{q: q}
}

const livraisonColumns = `id, dispatch_id, magasinier_id, type_livraison,
	quantite_livree, numero_bon, transporteur, numero_camion, chauffeur_nom,
	notes, statut, date_livraison`

// Create persiste une nouvelle livraison.
func (r *LivraisonRepo) Create(l *entity.Livraison) error {
	query := `
		INSERT INTO dispatch_livraisons (` + livraisonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.DispatchID, l.MagasinierID, l.TypeLivraison,
		l.QuantiteLivree, l.NumeroBon, l.Transporteur, l.NumeroCamion, l.ChauffeurNom,
		l.Notes, l.Statut, l.DateLivraison,
	)
	if err != nil {
		return fmt.Errorf("insert livraison: %w", err)
	}
	return nil
}

// GetByID retourne une livraison par ID, nil si absente.
func (r *LivraisonRepo) GetByID(id string) (*entity.Livraison, error) {
	query := `SELECT ` + livraisonColumns + ` FROM dispatch_livraisons WHERE id = $1`
	var l entity.Livraison
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.DispatchID, &l.MagasinierID, &l.TypeLivraison,
		&l.QuantiteLivree, &l.NumeroBon, &l.Transporteur, &l.NumeroCamion, &l.ChauffeurNom,
		&l.Notes, &l.Statut, &l.DateLivraison,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get livraison: %w", err)
	}
	return &l, nil
}

// UpdateStatut met à jour le statut d'une livraison (transition annulee).
func (r *LivraisonRepo) UpdateStatut(id, statut string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE dispatch_livraisons SET statut = $2 WHERE id = $1`, id, statut)
	if err != nil {
		return fmt.Errorf("update statut livraison: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update statut livraison %s: aucune ligne", id)
	}
	return nil
}

// ListByDispatch retourne toutes les livraisons d'un dispatch, annulées
// comprises (les cumuls sont calculés côté domaine).
func (r *LivraisonRepo) ListByDispatch(dispatchID string) ([]*entity.Livraison, error) {
	query := `SELECT ` + livraisonColumns + `
		FROM dispatch_livraisons WHERE dispatch_id = $1 ORDER BY date_livraison`
	rows, err := r.q.Query(context.Background(), query, dispatchID)
	if err != nil {
		return nil, fmt.Errorf("list livraisons: %w", err)
	}
	defer rows.Close()
	var list []*entity.Livraison
	for rows.Next() {
		var l entity.Livraison
		if err := rows.Scan(
			&l.ID, &l.DispatchID, &l.MagasinierID, &l.TypeLivraison,
			&l.QuantiteLivree, &l.NumeroBon, &l.Transporteur, &l.NumeroCamion, &l.ChauffeurNom,
			&l.Notes, &l.Statut, &l.DateLivraison,
		); err != nil {
			return nil, fmt.Errorf("scan livraison: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// CountForDay compte les livraisons du jour (séquence du numéro de bon).
func (r *LivraisonRepo) CountForDay(day time.Time) (int, error) {
	debut := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	fin := debut.AddDate(0, 0, 1)
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM dispatch_livraisons WHERE date_livraison >= $1 AND date_livraison < $2`,
		debut, fin,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count livraisons du jour: %w", err)
	}
	return n, nil
}
