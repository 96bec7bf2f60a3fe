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

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo implémentation de DispatchRepository sur PostgreSQL (pool ou tx).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

const dispatchColumns = `id, numero_dispatch, manager_id, client_id, produit_id,
	magasin_source_id, magasin_destination_id,
	quantite_totale, quantite_client, quantite_stock,
	type_dispatch, statut, notes, date_creation, date_completion`

// Create persiste un nouveau dispatch.
func (r *DispatchRepo) Create(d *entity.Dispatch) error {
	query := `
		INSERT INTO dispatches (` + dispatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.NumeroDispatch, d.ManagerID, d.ClientID, d.ProduitID,
		d.MagasinSourceID, d.MagasinDestinationID,
		d.QuantiteTotale, d.QuantiteClient, d.QuantiteStock,
		d.TypeDispatch, d.Statut, d.Notes, d.DateCreation, d.DateCompletion,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// GetByID retourne un dispatch par ID, nil si absent.
func (r *DispatchRepo) GetByID(id string) (*entity.Dispatch, error) {
	return r.get(id, false)
}

// GetForUpdate retourne le dispatch et verrouille sa ligne (SELECT FOR
// UPDATE) : sérialise les enregistrements de livraisons concurrents sur le
// même dispatch.
func (r *DispatchRepo) GetForUpdate(id string) (*entity.Dispatch, error) {
	return r.get(id, true)
}

func (r *DispatchRepo) get(id string, forUpdate bool) (*entity.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var d entity.Dispatch
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.NumeroDispatch, &d.ManagerID, &d.ClientID, &d.ProduitID,
		&d.MagasinSourceID, &d.MagasinDestinationID,
		&d.QuantiteTotale, &d.QuantiteClient, &d.QuantiteStock,
		&d.TypeDispatch, &d.Statut, &d.Notes, &d.DateCreation, &d.DateCompletion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return &d, nil
}

// UpdateStatut met à jour le statut (et la date de complétion le cas échéant).
// Seule mutation permise sur un dispatch existant.
func (r *DispatchRepo) UpdateStatut(id, statut string, dateCompletion *time.Time) error {
	query := `UPDATE dispatches SET statut = $2, date_completion = $3 WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, id, statut, dateCompletion)
	if err != nil {
		return fmt.Errorf("update statut dispatch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update statut dispatch %s: aucune ligne", id)
	}
	return nil
}

// List retourne les dispatches correspondant au filtre, les plus récents d'abord.
func (r *DispatchRepo) List(f repository.DispatchFilter) ([]*entity.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches WHERE 1=1`
	args := []any{}
	i := 1
	add := func(clause string, value any) {
		query += fmt.Sprintf(" AND %s $%d", clause, i)
		args = append(args, value)
		i++
	}
	if f.Statut != "" {
		add("statut =", f.Statut)
	}
	if f.ProduitID != "" {
		add("produit_id =", f.ProduitID)
	}
	if f.MagasinID != "" {
		add("magasin_destination_id =", f.MagasinID)
	}
	if f.DateDebut != nil {
		add("date_creation >=", *f.DateDebut)
	}
	if f.DateFin != nil {
		add("date_creation <=", *f.DateFin)
	}
	query += " ORDER BY date_creation DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", i, i+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Dispatch
	for rows.Next() {
		var d entity.Dispatch
		if err := rows.Scan(
			&d.ID, &d.NumeroDispatch, &d.ManagerID, &d.ClientID, &d.ProduitID,
			&d.MagasinSourceID, &d.MagasinDestinationID,
			&d.QuantiteTotale, &d.QuantiteClient, &d.QuantiteStock,
			&d.TypeDispatch, &d.Statut, &d.Notes, &d.DateCreation, &d.DateCompletion,
		); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// CountForMonth compte les dispatches créés dans le mois donné (séquence du
// numéro DISP-AAAAMM-NNNN ; les dispatches ne sont jamais supprimés, le
// compte est donc monotone).
func (r *DispatchRepo) CountForMonth(year int, month time.Month) (int, error) {
	debut := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	fin := debut.AddDate(0, 1, 0)
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM dispatches WHERE date_creation >= $1 AND date_creation < $2`,
		debut, fin,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispatches du mois: %w", err)
	}
	return n, nil
}
