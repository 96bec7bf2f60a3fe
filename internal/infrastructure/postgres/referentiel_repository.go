package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// Adaptateurs de lecture des données de référence. Le CRUD
// produits/magasins/clients appartient à un autre module ; ici on ne fait
// que vérifier l'existence des identifiants référencés.

var _ repository.ProduitRepository = (*ProduitRepo)(nil)
var _ repository.MagasinRepository = (*MagasinRepo)(nil)
var _ repository.ClientRepository = (*ClientRepo)(nil)

// ProduitRepo lecture des produits.
type ProduitRepo struct {
	pool *pgxpool.Pool
}

// NewProduitRepository construit l'adaptateur.
func NewProduitRepository(pool *pgxpool.Pool) *ProduitRepo {
	return &ProduitRepo{pool: pool}
}

// GetByID retourne un produit par ID, nil si absent.
func (r *ProduitRepo) GetByID(id string) (*entity.Produit, error) {
	var p entity.Produit
	err := r.pool.QueryRow(context.Background(),
		`SELECT id, nom, reference, unite, created_at FROM produits WHERE id = $1`, id,
	).Scan(&p.ID, &p.Nom, &p.Reference, &p.Unite, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get produit: %w", err)
	}
	return &p, nil
}

// MagasinRepo lecture des magasins.
type MagasinRepo struct {
	pool *pgxpool.Pool
}

// NewMagasinRepository construit l'adaptateur.
func NewMagasinRepository(pool *pgxpool.Pool) *MagasinRepo {
	return &MagasinRepo{pool: pool}
}

// GetByID retourne un magasin par ID, nil si absent.
func (r *MagasinRepo) GetByID(id string) (*entity.Magasin, error) {
	var m entity.Magasin
	err := r.pool.QueryRow(context.Background(),
		`SELECT id, nom, ville, created_at FROM magasins WHERE id = $1`, id,
	).Scan(&m.ID, &m.Nom, &m.Ville, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get magasin: %w", err)
	}
	return &m, nil
}

// ClientRepo lecture des clients.
type ClientRepo struct {
	pool *pgxpool.Pool
}

// NewClientRepository construit l'adaptateur.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// GetByID retourne un client par ID, nil si absent.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	var c entity.Client
	err := r.pool.QueryRow(context.Background(),
		`SELECT id, nom, created_at FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Nom, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}
