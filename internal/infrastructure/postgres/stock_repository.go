package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implémentation de StockRepository sur PostgreSQL (pool ou tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construit l'adaptateur de stock. Passer pool ou tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get retourne la projection de stock d'un couple (produit, magasin).
// Zéro (pas d'erreur) si aucune ligne n'existe.
func (r *StockRepo) Get(produitID, magasinID string) (*entity.Stock, error) {
	query := `
		SELECT produit_id, magasin_id, quantite_disponible, updated_at
		FROM stocks WHERE produit_id = $1 AND magasin_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, produitID, magasinID).Scan(
		&s.ProduitID, &s.MagasinID, &s.QuantiteDisponible, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProduitID: produitID, MagasinID: magasinID, QuantiteDisponible: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate retourne la projection et verrouille la ligne (SELECT FOR
// UPDATE) pour le contrôle de disponibilité. Même sémantique que Get pour une
// ligne absente : rien n'est verrouillé, mais comme toute écriture passe par
// ApplyDelta (addition faite par le SGBD), aucune valeur ne peut être écrasée.
func (r *StockRepo) GetForUpdate(produitID, magasinID string) (*entity.Stock, error) {
	query := `
		SELECT produit_id, magasin_id, quantite_disponible, updated_at
		FROM stocks WHERE produit_id = $1 AND magasin_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, produitID, magasinID).Scan(
		&s.ProduitID, &s.MagasinID, &s.QuantiteDisponible, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProduitID: produitID, MagasinID: magasinID, QuantiteDisponible: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// ApplyDelta ajoute delta à la quantité disponible, en créant la ligne au
// besoin. L'addition est déléguée au SGBD : une première entrée concurrente
// sur un couple encore sans ligne bloque sur l'index de la clé primaire puis
// s'additionne, au lieu d'écraser la quantité déjà écrite.
func (r *StockRepo) ApplyDelta(produitID, magasinID string, delta decimal.Decimal, at time.Time) error {
	query := `
		INSERT INTO stocks (produit_id, magasin_id, quantite_disponible, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (produit_id, magasin_id)
		DO UPDATE SET quantite_disponible = stocks.quantite_disponible + EXCLUDED.quantite_disponible,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query, produitID, magasinID, delta, at)
	if err != nil {
		return fmt.Errorf("apply delta stock: %w", err)
	}
	return nil
}
