package dispatch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	"github.com/sotramag/tonnage-api/internal/domain"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testManagerID    = "u-manager"
	testMagasinierID = "u-magasinier"
	testClientID     = "c-1"
	testProduitID    = "p-ble"
	testMagasinPort  = "m-port"
	testMagasinVille = "m-ville"
)

func buildAllocator(s *fakeStore) *appdispatch.AllocatorUseCase {
	return appdispatch.NewAllocatorUseCase(
		&fakeTxRunner{s},
		&fakeProduitRepo{ids: map[string]bool{testProduitID: true}},
		&fakeMagasinRepo{ids: map[string]bool{testMagasinPort: true, testMagasinVille: true}},
		&fakeClientRepo{ids: map[string]bool{testClientID: true}},
	)
}

func validCreateInput() appdispatch.CreateDispatchInput {
	return appdispatch.CreateDispatchInput{
		ManagerID:            testManagerID,
		ClientID:             testClientID,
		ProduitID:            testProduitID,
		MagasinSourceID:      testMagasinPort,
		MagasinDestinationID: testMagasinVille,
		QuantiteTotale:       qty(100),
		QuantiteClient:       qty(40),
		QuantiteStock:        qty(60),
		SourceExterne:        true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateDispatch
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDispatch_Nominal(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)

	d, err := uc.CreateDispatch(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, entity.DispatchStatutPlanifie, d.Statut,
		"un dispatch nouvellement créé doit être planifie")
	assert.Equal(t, entity.DispatchTypeMixte, d.TypeDispatch,
		"40 client / 60 stock : le type dérivé doit être mixte")

	attendu := fmt.Sprintf("DISP-%s-0001", time.Now().Format("200601"))
	assert.Equal(t, attendu, d.NumeroDispatch,
		"premier dispatch du mois : numéro séquentiel 0001")

	// Le mouvement d'audit de type dispatch est créé dans la même transaction
	// et ne touche pas la projection de stock.
	require.Len(t, s.mouvements, 1)
	m := s.mouvements[0]
	assert.Equal(t, entity.MouvementTypeDispatch, m.Type)
	assert.Equal(t, d.NumeroDispatch, m.Reference,
		"le mouvement d'audit porte le numéro du dispatch en référence")
	assert.Empty(t, s.stocks, "un mouvement dispatch ne doit jamais modifier le stock")
}

func TestCreateDispatch_NumerotationSequentielleDansLeMois(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)
	ctx := context.Background()

	d1, err := uc.CreateDispatch(ctx, validCreateInput())
	require.NoError(t, err)
	in2 := validCreateInput()
	d2, err := uc.CreateDispatch(ctx, in2)
	require.NoError(t, err)

	mois := time.Now().Format("200601")
	assert.Equal(t, "DISP-"+mois+"-0001", d1.NumeroDispatch)
	assert.Equal(t, "DISP-"+mois+"-0002", d2.NumeroDispatch)
}

func TestCreateDispatch_TypeDeriveDeLaRepartition(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)
	ctx := context.Background()

	inClient := validCreateInput()
	inClient.QuantiteClient = qty(100)
	inClient.QuantiteStock = decimal.Zero
	d, err := uc.CreateDispatch(ctx, inClient)
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchTypeDirectClient, d.TypeDispatch)

	inStock := validCreateInput()
	inStock.QuantiteClient = decimal.Zero
	inStock.QuantiteStock = qty(100)
	d, err = uc.CreateDispatch(ctx, inStock)
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchTypeStockMagasin, d.TypeDispatch)
}

func TestCreateDispatch_SommeInvalide_Rejetee(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)

	in := validCreateInput()
	in.QuantiteClient = qty(40)
	in.QuantiteStock = qty(50) // 40 + 50 != 100
	_, err := uc.CreateDispatch(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrValidation,
		"la répartition doit sommer à la quantité totale (±0.01)")
	assert.Empty(t, s.dispatches, "rien ne doit être persisté en cas de rejet")
	assert.Empty(t, s.mouvements)
}

// La tolérance absorbe les arrondis de saisie : 39.995 + 60 = 99.995 ≈ 100.
func TestCreateDispatch_SommeDansLaTolerance_Acceptee(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)

	in := validCreateInput()
	in.QuantiteClient = qty(39.995)
	in.QuantiteStock = qty(60)
	_, err := uc.CreateDispatch(context.Background(), in)

	assert.NoError(t, err, "un écart de somme de 0.005 est dans la tolérance")
}

func TestCreateDispatch_QuantitesInvalides(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)
	ctx := context.Background()

	in := validCreateInput()
	in.QuantiteTotale = decimal.Zero
	_, err := uc.CreateDispatch(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "quantité totale nulle rejetée")

	in = validCreateInput()
	in.QuantiteClient = qty(-5)
	in.QuantiteStock = qty(105)
	_, err = uc.CreateDispatch(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "quantité client négative rejetée")
}

func TestCreateDispatch_ProduitInconnu_NotFound(t *testing.T) {
	s := newFakeStore()
	uc := buildAllocator(s)

	in := validCreateInput()
	in.ProduitID = "p-inexistant"
	_, err := uc.CreateDispatch(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateDispatch_SourceInterne_ControleLaDisponibilite(t *testing.T) {
	s := newFakeStore()
	s.setStock(testProduitID, testMagasinPort, 50) // moins que les 100 demandées
	uc := buildAllocator(s)

	in := validCreateInput()
	in.SourceExterne = false
	_, err := uc.CreateDispatch(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"dispatcher 100 t depuis un magasin qui n'en a que 50 doit être refusé")
	assert.Empty(t, s.dispatches)
}

func TestCreateDispatch_SourceInterne_DisponibiliteSuffisante(t *testing.T) {
	s := newFakeStore()
	s.setStock(testProduitID, testMagasinPort, 150)
	uc := buildAllocator(s)

	in := validCreateInput()
	in.SourceExterne = false
	_, err := uc.CreateDispatch(context.Background(), in)

	assert.NoError(t, err)
}

// Cargaison navire : la quantité n'est pas encore dans le journal, le
// contrôle de disponibilité au magasin source est sauté.
func TestCreateDispatch_SourceExterne_SauteLeControle(t *testing.T) {
	s := newFakeStore() // aucun stock nulle part
	uc := buildAllocator(s)

	_, err := uc.CreateDispatch(context.Background(), validCreateInput())

	assert.NoError(t, err,
		"source externe : pas de contrôle de disponibilité au magasin source")
}
