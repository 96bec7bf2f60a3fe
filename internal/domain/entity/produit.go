package entity

import "time"

// Produit : données de référence, possédées par le module produits.
// Le moteur de dispatch vérifie l'existence mais ne gère pas le cycle de vie.
type Produit struct {
	ID        string
	Nom       string
	Reference string
	Unite     string // tonne par défaut
	CreatedAt time.Time
}

// Magasin : données de référence (entrepôt).
type Magasin struct {
	ID        string
	Nom       string
	Ville     string
	CreatedAt time.Time
}

// Client : données de référence (client destinataire).
type Client struct {
	ID        string
	Nom       string
	CreatedAt time.Time
}
