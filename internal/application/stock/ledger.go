package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// Ledger est l'unique chemin de code applicatif pour toute écriture qui
// affecte le stock. Pas de trigger BD : la mise à jour de la projection est
// explicite et transactionnelle (le système d'origine a été mordu par un
// trigger qui ne se déclenchait pas).
type Ledger struct {
	txRunner      TxRunner
	mouvementRepo repository.MouvementRepository
	stockRepo     repository.StockRepository
	produitRepo   repository.ProduitRepository
	magasinRepo   repository.MagasinRepository
}

// NewLedger construit le journal de stock.
func NewLedger(
	txRunner TxRunner,
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
	produitRepo repository.ProduitRepository,
	magasinRepo repository.MagasinRepository,
) *Ledger {
	return &Ledger{
		txRunner:      txRunner,
		mouvementRepo: mouvementRepo,
		stockRepo:     stockRepo,
		produitRepo:   produitRepo,
		magasinRepo:   magasinRepo,
	}
}

// MouvementInput entrée pour ApplyMouvement.
// entree : MagasinDestinationID requis. sortie : MagasinSourceID requis.
// transfert : les deux, distincts. dispatch : trace seule, les deux magasins.
type MouvementInput struct {
	Type                 string
	ProduitID            string
	MagasinSourceID      string
	MagasinDestinationID string
	Quantite             decimal.Decimal
	Reference            string
	Transporteur         string
	NumeroCamion         string
	NomChauffeur         string
	Observations         string
	UserID               string
	// AutoriserStockNegatif : politique au choix de l'appelant. Certains flux
	// enregistrent volontairement un déficit et laissent le rapport d'écarts
	// le faire remonter, au lieu de rejeter la sortie.
	AutoriserStockNegatif bool
}

// ApplyMouvement ajoute le mouvement au journal puis met à jour la projection
// dans la même transaction, la ligne de stock verrouillée (SELECT FOR UPDATE).
// Un mouvement de type dispatch est enregistré pour traçabilité uniquement et
// ne modifie jamais quantite_disponible.
func (l *Ledger) ApplyMouvement(ctx context.Context, input MouvementInput) (*entity.Mouvement, error) {
	if err := l.validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	m := &entity.Mouvement{
		ID:            uuid.New().String(),
		Type:          input.Type,
		ProduitID:     input.ProduitID,
		Quantite:      input.Quantite,
		Reference:     input.Reference,
		Transporteur:  input.Transporteur,
		NumeroCamion:  input.NumeroCamion,
		NomChauffeur:  input.NomChauffeur,
		Observations:  input.Observations,
		DateMouvement: now,
		CreatedBy:     input.UserID,
	}
	if m.Reference == "" {
		m.Reference = GenerateReference(now)
	}
	if input.MagasinSourceID != "" {
		m.MagasinSourceID = &input.MagasinSourceID
	}
	if input.MagasinDestinationID != "" {
		m.MagasinDestinationID = &input.MagasinDestinationID
	}

	err := l.txRunner.Run(ctx, func(
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error {
		switch input.Type {
		case entity.MouvementTypeEntree:
			return EntreeInTx(mouvementRepo, stockRepo, m)
		case entity.MouvementTypeSortie:
			return SortieInTx(mouvementRepo, stockRepo, m, input.AutoriserStockNegatif)
		case entity.MouvementTypeTransfert:
			return transfertInTx(mouvementRepo, stockRepo, m, input.AutoriserStockNegatif)
		case entity.MouvementTypeDispatch:
			// Trace d'audit : aucun effet sur la projection.
			return mouvementRepo.Create(m)
		}
		return domain.ErrValidation
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetAvailable retourne la quantité disponible courante pour le couple
// (produit, magasin). Zéro si aucune ligne de stock n'existe.
func (l *Ledger) GetAvailable(ctx context.Context, produitID, magasinID string) (decimal.Decimal, error) {
	if produitID == "" || magasinID == "" {
		return decimal.Zero, domain.ErrValidation
	}
	s, err := l.stockRepo.Get(produitID, magasinID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.QuantiteDisponible, nil
}

// MouvementFilter critères de consultation du journal. Exactement une clé
// (produit ou magasin) est requise.
type MouvementFilter struct {
	ProduitID string
	MagasinID string
	DateDebut *time.Time
	DateFin   *time.Time
	Limit     int
	Offset    int
}

// ListMouvements consulte le journal par produit ou par magasin, du plus
// récent au plus ancien. Lecture seule.
func (l *Ledger) ListMouvements(ctx context.Context, f MouvementFilter) ([]*entity.Mouvement, error) {
	switch {
	case f.ProduitID != "":
		return l.mouvementRepo.ListByProduit(f.ProduitID, f.DateDebut, f.DateFin, f.Limit, f.Offset)
	case f.MagasinID != "":
		return l.mouvementRepo.ListByMagasin(f.MagasinID, f.DateDebut, f.DateFin, f.Limit, f.Offset)
	default:
		return nil, domain.ErrValidation
	}
}

func (l *Ledger) validate(input MouvementInput) error {
	if input.ProduitID == "" || !input.Quantite.GreaterThan(decimal.Zero) {
		return domain.ErrValidation
	}
	switch input.Type {
	case entity.MouvementTypeEntree:
		if input.MagasinDestinationID == "" {
			return domain.ErrValidation
		}
	case entity.MouvementTypeSortie:
		if input.MagasinSourceID == "" {
			return domain.ErrValidation
		}
	case entity.MouvementTypeTransfert:
		if input.MagasinSourceID == "" || input.MagasinDestinationID == "" ||
			input.MagasinSourceID == input.MagasinDestinationID {
			return domain.ErrValidation
		}
	case entity.MouvementTypeDispatch:
		if input.MagasinSourceID == "" || input.MagasinDestinationID == "" {
			return domain.ErrValidation
		}
	default:
		return domain.ErrValidation
	}

	produit, err := l.produitRepo.GetByID(input.ProduitID)
	if err != nil {
		return err
	}
	if produit == nil {
		return domain.ErrNotFound
	}
	for _, magasinID := range []string{input.MagasinSourceID, input.MagasinDestinationID} {
		if magasinID == "" {
			continue
		}
		magasin, err := l.magasinRepo.GetByID(magasinID)
		if err != nil {
			return err
		}
		if magasin == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// EntreeInTx applique une entrée avec les repositories de la transaction de
// l'appelant : ajoute la quantité à la projection et enregistre le mouvement.
// Le delta est appliqué sans lecture préalable : deux premières entrées
// concurrentes sur un couple encore sans ligne s'additionnent au lieu que la
// seconde écrase la première. Réutilisée par l'enregistrement de livraison.
func EntreeInTx(
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
	m *entity.Mouvement,
) error {
	if m.MagasinDestinationID == nil {
		return domain.ErrValidation
	}
	if err := stockRepo.ApplyDelta(m.ProduitID, *m.MagasinDestinationID, m.Quantite, m.DateMouvement); err != nil {
		return err
	}
	return mouvementRepo.Create(m)
}

// SortieInTx applique une sortie avec les repositories de la transaction de
// l'appelant : verrouille la ligne source pour le contrôle de disponibilité
// puis retranche la quantité. Refuse de rendre le stock négatif sauf si
// autoriserNegatif. Réutilisée par la compensation d'annulation de livraison.
func SortieInTx(
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
	m *entity.Mouvement,
	autoriserNegatif bool,
) error {
	if m.MagasinSourceID == nil {
		return domain.ErrValidation
	}
	s, err := stockRepo.GetForUpdate(m.ProduitID, *m.MagasinSourceID)
	if err != nil {
		return err
	}
	if !autoriserNegatif && s.QuantiteDisponible.LessThan(m.Quantite) {
		return domain.ErrInsufficientStock
	}
	if err := stockRepo.ApplyDelta(m.ProduitID, *m.MagasinSourceID, m.Quantite.Neg(), m.DateMouvement); err != nil {
		return err
	}
	return mouvementRepo.Create(m)
}

// transfertInTx : sortie au magasin source puis entrée au magasin destination,
// un seul enregistrement de mouvement portant les deux magasins.
func transfertInTx(
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
	m *entity.Mouvement,
	autoriserNegatif bool,
) error {
	source, err := stockRepo.GetForUpdate(m.ProduitID, *m.MagasinSourceID)
	if err != nil {
		return err
	}
	if !autoriserNegatif && source.QuantiteDisponible.LessThan(m.Quantite) {
		return domain.ErrInsufficientStock
	}
	if err := stockRepo.ApplyDelta(m.ProduitID, *m.MagasinSourceID, m.Quantite.Neg(), m.DateMouvement); err != nil {
		return err
	}
	if err := stockRepo.ApplyDelta(m.ProduitID, *m.MagasinDestinationID, m.Quantite, m.DateMouvement); err != nil {
		return err
	}
	return mouvementRepo.Create(m)
}

// GenerateReference génère une référence de mouvement unique MVT-AAAAMMJJ-xxxxxxxx.
func GenerateReference(now time.Time) string {
	return fmt.Sprintf("MVT-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
}
