package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/sotramag/tonnage-api/internal/domain"
)

func TestIsReplayable_SerialisationEtDeadlock(t *testing.T) {
	assert.True(t, isReplayable(&pgconn.PgError{Code: "40001"}),
		"un échec de sérialisation se rejoue")
	assert.True(t, isReplayable(fmt.Errorf("commit transaction: %w", &pgconn.PgError{Code: "40P01"})),
		"un deadlock détecté se rejoue, même enveloppé")
}

// Deux livraisons concurrentes sur des dispatches différents peuvent calculer
// le même numéro de bon (séquence count+1 du jour). La violation d'unicité
// qui en résulte doit être rejouée : le recomptage au rejeu produit le numéro
// suivant, au lieu de remonter un 500 pour une requête valide.
func TestIsReplayable_CollisionNumeroGenere(t *testing.T) {
	err := fmt.Errorf("insert livraison: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "dispatch_livraisons_numero_bon_key",
	})
	assert.True(t, isReplayable(err))
}

func TestIsReplayable_ErreursMetier_NonRejouees(t *testing.T) {
	assert.False(t, isReplayable(errors.New("insert livraison: connexion fermée")))
	// Un doublon imputable à l'appelant est converti en ErrValidation par le
	// repository, chaîne PgError rompue : pas de rejeu.
	assert.False(t, isReplayable(fmt.Errorf("%w: référence de mouvement dupliquée", domain.ErrValidation)))
}
