package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation vérifie si une erreur est une violation de contrainte
// unique (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isRetryableTxError vérifie si l'erreur est un échec de sérialisation
// (40001) ou un deadlock détecté (40P01) : artefacts de l'implémentation,
// pas des erreurs utilisateur, donc rejouables.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// isReplayable regroupe les erreurs qui justifient de rejouer la transaction :
// les échecs de sérialisation/deadlock, et les violations d'unicité. Les
// numéros générés (numero_dispatch, numero_bon) sont des séquences count+1 :
// deux transactions concurrentes peuvent calculer le même numéro, et le rejeu
// recompte la séquence qui produit alors le numéro suivant. Les doublons
// imputables à l'appelant (référence de mouvement fournie) sont convertis en
// ErrValidation par le repository avant de remonter ici, chaîne PgError
// rompue, donc jamais rejoués.
func isReplayable(err error) bool {
	return isRetryableTxError(err) || isUniqueViolation(err)
}
