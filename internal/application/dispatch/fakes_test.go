package dispatch_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sotramag/tonnage-api/internal/domain"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

func qty(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en mémoire. Le store garde des valeurs (pas des pointeurs) pour que
// le snapshot/restore du fakeTxRunner simule fidèlement le rollback : un cas
// d'usage qui échoue ne doit laisser aucune écriture partielle visible.
// ──────────────────────────────────────────────────────────────────────────────

func stockKey(produitID, magasinID string) string { return produitID + "|" + magasinID }

type fakeStore struct {
	dispatches map[string]entity.Dispatch
	livraisons map[string]entity.Livraison
	// ordre d'insertion conservé pour ListByDispatch
	livraisonOrder []string
	mouvements     []entity.Mouvement
	stocks         map[string]entity.Stock
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		dispatches: map[string]entity.Dispatch{},
		livraisons: map[string]entity.Livraison{},
		stocks:     map[string]entity.Stock{},
	}
}

func (s *fakeStore) setStock(produitID, magasinID string, quantite float64) {
	s.stocks[stockKey(produitID, magasinID)] = entity.Stock{
		ProduitID:          produitID,
		MagasinID:          magasinID,
		QuantiteDisponible: qty(quantite),
	}
}

type storeSnapshot struct {
	dispatches     map[string]entity.Dispatch
	livraisons     map[string]entity.Livraison
	livraisonOrder []string
	mouvements     []entity.Mouvement
	stocks         map[string]entity.Stock
}

func (s *fakeStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		dispatches:     make(map[string]entity.Dispatch, len(s.dispatches)),
		livraisons:     make(map[string]entity.Livraison, len(s.livraisons)),
		livraisonOrder: append([]string(nil), s.livraisonOrder...),
		mouvements:     append([]entity.Mouvement(nil), s.mouvements...),
		stocks:         make(map[string]entity.Stock, len(s.stocks)),
	}
	for k, v := range s.dispatches {
		snap.dispatches[k] = v
	}
	for k, v := range s.livraisons {
		snap.livraisons[k] = v
	}
	for k, v := range s.stocks {
		snap.stocks[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.dispatches = snap.dispatches
	s.livraisons = snap.livraisons
	s.livraisonOrder = snap.livraisonOrder
	s.mouvements = snap.mouvements
	s.stocks = snap.stocks
}

// ── DispatchRepository ────────────────────────────────────────────────────────

type fakeDispatchRepo struct{ s *fakeStore }

func (r *fakeDispatchRepo) Create(d *entity.Dispatch) error {
	r.s.dispatches[d.ID] = *d
	return nil
}

func (r *fakeDispatchRepo) GetByID(id string) (*entity.Dispatch, error) {
	d, ok := r.s.dispatches[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *fakeDispatchRepo) GetForUpdate(id string) (*entity.Dispatch, error) {
	return r.GetByID(id)
}

func (r *fakeDispatchRepo) UpdateStatut(id, statut string, dateCompletion *time.Time) error {
	d, ok := r.s.dispatches[id]
	if !ok {
		return fmt.Errorf("dispatch %s: aucune ligne mise à jour", id)
	}
	d.Statut = statut
	d.DateCompletion = dateCompletion
	r.s.dispatches[id] = d
	return nil
}

func (r *fakeDispatchRepo) List(f repository.DispatchFilter) ([]*entity.Dispatch, error) {
	var out []*entity.Dispatch
	for _, d := range r.s.dispatches {
		d := d
		if f.Statut != "" && d.Statut != f.Statut {
			continue
		}
		if f.ProduitID != "" && d.ProduitID != f.ProduitID {
			continue
		}
		if f.MagasinID != "" && d.MagasinDestinationID != f.MagasinID {
			continue
		}
		if f.DateDebut != nil && d.DateCreation.Before(*f.DateDebut) {
			continue
		}
		if f.DateFin != nil && d.DateCreation.After(*f.DateFin) {
			continue
		}
		out = append(out, &d)
	}
	// même contrat que le SQL : plus récents d'abord, LIMIT/OFFSET appliqués
	sort.Slice(out, func(i, j int) bool {
		return out[i].DateCreation.After(out[j].DateCreation)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeDispatchRepo) CountForMonth(year int, month time.Month) (int, error) {
	n := 0
	for _, d := range r.s.dispatches {
		if d.DateCreation.Year() == year && d.DateCreation.Month() == month {
			n++
		}
	}
	return n, nil
}

// ── LivraisonRepository ───────────────────────────────────────────────────────

type fakeLivraisonRepo struct{ s *fakeStore }

func (r *fakeLivraisonRepo) Create(l *entity.Livraison) error {
	r.s.livraisons[l.ID] = *l
	r.s.livraisonOrder = append(r.s.livraisonOrder, l.ID)
	return nil
}

func (r *fakeLivraisonRepo) GetByID(id string) (*entity.Livraison, error) {
	l, ok := r.s.livraisons[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeLivraisonRepo) UpdateStatut(id, statut string) error {
	l, ok := r.s.livraisons[id]
	if !ok {
		return fmt.Errorf("livraison %s: aucune ligne mise à jour", id)
	}
	l.Statut = statut
	r.s.livraisons[id] = l
	return nil
}

func (r *fakeLivraisonRepo) ListByDispatch(dispatchID string) ([]*entity.Livraison, error) {
	var out []*entity.Livraison
	for _, id := range r.s.livraisonOrder {
		l := r.s.livraisons[id]
		if l.DispatchID == dispatchID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *fakeLivraisonRepo) CountForDay(day time.Time) (int, error) {
	n := 0
	y, m, d := day.Date()
	for _, l := range r.s.livraisons {
		ly, lm, ld := l.DateLivraison.Date()
		if ly == y && lm == m && ld == d {
			n++
		}
	}
	return n, nil
}

// ── MouvementRepository ───────────────────────────────────────────────────────

type fakeMouvementRepo struct{ s *fakeStore }

func (r *fakeMouvementRepo) Create(m *entity.Mouvement) error {
	for _, existing := range r.s.mouvements {
		if existing.Reference == m.Reference {
			return fmt.Errorf("%w: référence de mouvement dupliquée", domain.ErrValidation)
		}
	}
	r.s.mouvements = append(r.s.mouvements, *m)
	return nil
}

func (r *fakeMouvementRepo) ListByProduit(produitID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error) {
	var out []*entity.Mouvement
	for _, m := range r.s.mouvements {
		if m.ProduitID == produitID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *fakeMouvementRepo) ListByMagasin(magasinID string, from, to *time.Time, limit, offset int) ([]*entity.Mouvement, error) {
	var out []*entity.Mouvement
	for _, m := range r.s.mouvements {
		if (m.MagasinSourceID != nil && *m.MagasinSourceID == magasinID) ||
			(m.MagasinDestinationID != nil && *m.MagasinDestinationID == magasinID) {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

// ── StockRepository ───────────────────────────────────────────────────────────

type fakeStockRepo struct{ s *fakeStore }

// Get retourne une ligne à quantité nulle si le couple n'existe pas encore,
// comme le repository PostgreSQL.
func (r *fakeStockRepo) Get(produitID, magasinID string) (*entity.Stock, error) {
	st, ok := r.s.stocks[stockKey(produitID, magasinID)]
	if !ok {
		return &entity.Stock{ProduitID: produitID, MagasinID: magasinID}, nil
	}
	return &st, nil
}

func (r *fakeStockRepo) GetForUpdate(produitID, magasinID string) (*entity.Stock, error) {
	return r.Get(produitID, magasinID)
}

func (r *fakeStockRepo) ApplyDelta(produitID, magasinID string, delta decimal.Decimal, at time.Time) error {
	k := stockKey(produitID, magasinID)
	st, ok := r.s.stocks[k]
	if !ok {
		st = entity.Stock{ProduitID: produitID, MagasinID: magasinID}
	}
	st.QuantiteDisponible = st.QuantiteDisponible.Add(delta)
	st.UpdatedAt = at
	r.s.stocks[k] = st
	return nil
}

// ── Référentiel ───────────────────────────────────────────────────────────────

type fakeProduitRepo struct{ ids map[string]bool }

func (r *fakeProduitRepo) GetByID(id string) (*entity.Produit, error) {
	if !r.ids[id] {
		return nil, nil
	}
	return &entity.Produit{ID: id, Nom: "Blé tendre", Unite: "tonne"}, nil
}

type fakeMagasinRepo struct{ ids map[string]bool }

func (r *fakeMagasinRepo) GetByID(id string) (*entity.Magasin, error) {
	if !r.ids[id] {
		return nil, nil
	}
	return &entity.Magasin{ID: id, Nom: "Magasin " + id}, nil
}

type fakeClientRepo struct{ ids map[string]bool }

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	if !r.ids[id] {
		return nil, nil
	}
	return &entity.Client{ID: id, Nom: "Client " + id}, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner exécute la fonction contre le store et restaure le snapshot en
// cas d'erreur, simulant le rollback de la transaction réelle.
type fakeTxRunner struct{ s *fakeStore }

func (r *fakeTxRunner) RunDispatch(ctx context.Context, fn func(
	dispatchRepo repository.DispatchRepository,
	livraisonRepo repository.LivraisonRepository,
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(&fakeDispatchRepo{r.s}, &fakeLivraisonRepo{r.s}, &fakeMouvementRepo{r.s}, &fakeStockRepo{r.s})
	if err != nil {
		r.s.restore(snap)
	}
	return err
}
