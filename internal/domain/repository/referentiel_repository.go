package repository

import "github.com/sotramag/tonnage-api/internal/domain/entity"

// Ports de lecture des données de référence. Le moteur valide l'existence
// des identifiants référencés mais ne possède pas leur cycle de vie
// (le CRUD produits/magasins/clients est un collaborateur externe).

// ProduitRepository lecture des produits.
type ProduitRepository interface {
	GetByID(id string) (*entity.Produit, error)
}

// MagasinRepository lecture des magasins.
type MagasinRepository interface {
	GetByID(id string) (*entity.Magasin, error)
}

// ClientRepository lecture des clients.
type ClientRepository interface {
	GetByID(id string) (*entity.Client, error)
}
