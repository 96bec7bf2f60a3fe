package domain

import "errors"

// Erreurs de domaine (sans dépendances externes). L'infrastructure les
// enveloppe avec %w ; les handlers HTTP les mappent vers des codes d'erreur.
var (
	ErrValidation          = errors.New("données invalides")
	ErrNotFound            = errors.New("ressource introuvable")
	ErrInsufficientStock   = errors.New("stock insuffisant")
	ErrOverAllocation      = errors.New("quantité livrée supérieure à l'allocation restante")
	ErrInvalidState        = errors.New("opération non permise dans le statut courant")
	ErrConcurrencyConflict = errors.New("conflit d'accès concurrent, réessayer")
)
