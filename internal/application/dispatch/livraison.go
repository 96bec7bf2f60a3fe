package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/application/stock"
	"github.com/sotramag/tonnage-api/internal/domain"
	domdispatch "github.com/sotramag/tonnage-api/internal/domain/dispatch"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// LivraisonUseCase enregistre et annule les livraisons (rotations) contre un
// dispatch ouvert. Chaque appel est une transaction unique : ligne du
// dispatch verrouillée d'abord, puis livraison persistée, mouvement de stock
// appliqué et statut recalculé — tout ou rien.
type LivraisonUseCase struct {
	txRunner TxRunner
}

// NewLivraisonUseCase construit le cas d'usage.
func NewLivraisonUseCase(txRunner TxRunner) *LivraisonUseCase {
	return &LivraisonUseCase{txRunner: txRunner}
}

// RecordLivraisonInput entrée pour l'enregistrement d'une livraison.
type RecordLivraisonInput struct {
	MagasinierID   string
	TypeLivraison  string
	QuantiteLivree decimal.Decimal
	Transporteur   string
	NumeroCamion   string
	ChauffeurNom   string
	Notes          string
}

// RecordLivraison enregistre une livraison contre le dispatch donné.
// La somme des livraisons non annulées d'un type ne dépasse jamais la
// sous-allocation correspondante (ErrOverAllocation sinon). Une livraison
// stock applique une entrée au magasin destination ; une livraison client
// part directement chez le client et n'est tracée que dans les livraisons.
func (uc *LivraisonUseCase) RecordLivraison(ctx context.Context, dispatchID string, input RecordLivraisonInput) (*entity.Livraison, error) {
	if dispatchID == "" || input.MagasinierID == "" {
		return nil, domain.ErrValidation
	}
	if input.TypeLivraison != entity.LivraisonTypeClient && input.TypeLivraison != entity.LivraisonTypeStock {
		return nil, domain.ErrValidation
	}
	if !input.QuantiteLivree.GreaterThan(decimal.Zero) {
		return nil, domain.ErrValidation
	}
	if input.Transporteur == "" || input.NumeroCamion == "" || input.ChauffeurNom == "" {
		return nil, domain.ErrValidation
	}

	var livraison *entity.Livraison
	err := uc.txRunner.RunDispatch(ctx, func(
		dispatchRepo repository.DispatchRepository,
		livraisonRepo repository.LivraisonRepository,
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error {
		d, err := dispatchRepo.GetForUpdate(dispatchID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Statut == entity.DispatchStatutComplete || d.Statut == entity.DispatchStatutAnnule {
			return domain.ErrInvalidState
		}

		livraisons, err := livraisonRepo.ListByDispatch(dispatchID)
		if err != nil {
			return err
		}
		dejaLivre := domdispatch.LivreParType(livraisons, input.TypeLivraison)
		allocation := d.QuantiteClient
		if input.TypeLivraison == entity.LivraisonTypeStock {
			allocation = d.QuantiteStock
		}
		if dejaLivre.Add(input.QuantiteLivree).GreaterThan(allocation.Add(domdispatch.Tolerance)) {
			return domain.ErrOverAllocation
		}

		now := time.Now()
		seq, err := livraisonRepo.CountForDay(now)
		if err != nil {
			return err
		}
		livraison = &entity.Livraison{
			ID:             uuid.New().String(),
			DispatchID:     d.ID,
			MagasinierID:   input.MagasinierID,
			TypeLivraison:  input.TypeLivraison,
			QuantiteLivree: input.QuantiteLivree,
			NumeroBon:      generateNumeroBon(input.TypeLivraison, now, seq+1),
			Transporteur:   input.Transporteur,
			NumeroCamion:   input.NumeroCamion,
			ChauffeurNom:   input.ChauffeurNom,
			Notes:          input.Notes,
			Statut:         entity.LivraisonStatutEnregistree,
			DateLivraison:  now,
		}
		if err := livraisonRepo.Create(livraison); err != nil {
			return err
		}

		if input.TypeLivraison == entity.LivraisonTypeStock {
			destination := d.MagasinDestinationID
			entree := &entity.Mouvement{
				ID:                   uuid.New().String(),
				Type:                 entity.MouvementTypeEntree,
				ProduitID:            d.ProduitID,
				MagasinDestinationID: &destination,
				Quantite:             input.QuantiteLivree,
				Reference:            livraison.NumeroBon,
				Transporteur:         input.Transporteur,
				NumeroCamion:         input.NumeroCamion,
				NomChauffeur:         input.ChauffeurNom,
				DateMouvement:        now,
				CreatedBy:            input.MagasinierID,
			}
			if err := stock.EntreeInTx(mouvementRepo, stockRepo, entree); err != nil {
				return err
			}
		}

		return recomputeStatut(dispatchRepo, d, append(livraisons, livraison))
	})
	if err != nil {
		return nil, err
	}
	return livraison, nil
}

// CancelLivraison annule une livraison. Idempotent : annuler une livraison
// déjà annulée est un no-op, pour tolérer les retries client. Si une entrée
// avait été appliquée au magasin destination, une sortie compensatoire de
// même quantité est appliquée au même couple (produit, magasin).
func (uc *LivraisonUseCase) CancelLivraison(ctx context.Context, livraisonID, userID string) error {
	if livraisonID == "" {
		return domain.ErrValidation
	}
	return uc.txRunner.RunDispatch(ctx, func(
		dispatchRepo repository.DispatchRepository,
		livraisonRepo repository.LivraisonRepository,
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error {
		l, err := livraisonRepo.GetByID(livraisonID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		if l.Annulee() {
			return nil
		}

		d, err := dispatchRepo.GetForUpdate(l.DispatchID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Statut == entity.DispatchStatutComplete {
			return domain.ErrInvalidState
		}

		if err := annulerLivraisonInTx(livraisonRepo, mouvementRepo, stockRepo, d, l, userID); err != nil {
			return err
		}

		livraisons, err := livraisonRepo.ListByDispatch(d.ID)
		if err != nil {
			return err
		}
		return recomputeStatut(dispatchRepo, d, livraisons)
	})
}

// CancelDispatch annule un dispatch (décision manager). Permis depuis
// planifie ou en_cours ; les entrées déjà appliquées par des livraisons stock
// sont reversées. Si la marchandise a déjà quitté le magasin destination
// (consommation aval), la compensation est impossible et l'annulation est
// rejetée avec ErrInvalidState. No-op si le dispatch est déjà annulé.
func (uc *LivraisonUseCase) CancelDispatch(ctx context.Context, dispatchID, managerID string) error {
	if dispatchID == "" {
		return domain.ErrValidation
	}
	return uc.txRunner.RunDispatch(ctx, func(
		dispatchRepo repository.DispatchRepository,
		livraisonRepo repository.LivraisonRepository,
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error {
		d, err := dispatchRepo.GetForUpdate(dispatchID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Statut == entity.DispatchStatutAnnule {
			return nil
		}
		if d.Statut == entity.DispatchStatutComplete {
			return domain.ErrInvalidState
		}

		livraisons, err := livraisonRepo.ListByDispatch(dispatchID)
		if err != nil {
			return err
		}
		for _, l := range livraisons {
			if l.Annulee() {
				continue
			}
			if err := annulerLivraisonInTx(livraisonRepo, mouvementRepo, stockRepo, d, l, managerID); err != nil {
				if err == domain.ErrInsufficientStock {
					// La marchandise a déjà quitté le journal : annulation interdite.
					return domain.ErrInvalidState
				}
				return err
			}
		}

		d.Statut = entity.DispatchStatutAnnule
		return dispatchRepo.UpdateStatut(d.ID, entity.DispatchStatutAnnule, nil)
	})
}

// annulerLivraisonInTx passe la livraison en annulee et, pour une livraison
// stock, applique la sortie compensatoire au magasin destination du dispatch.
func annulerLivraisonInTx(
	livraisonRepo repository.LivraisonRepository,
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
	d *entity.Dispatch,
	l *entity.Livraison,
	userID string,
) error {
	if err := livraisonRepo.UpdateStatut(l.ID, entity.LivraisonStatutAnnulee); err != nil {
		return err
	}
	l.Statut = entity.LivraisonStatutAnnulee
	if l.TypeLivraison != entity.LivraisonTypeStock {
		return nil
	}
	destination := d.MagasinDestinationID
	compensation := &entity.Mouvement{
		ID:              uuid.New().String(),
		Type:            entity.MouvementTypeSortie,
		ProduitID:       d.ProduitID,
		MagasinSourceID: &destination,
		Quantite:        l.QuantiteLivree,
		Reference:       fmt.Sprintf("ANNUL-%s", l.NumeroBon),
		Observations:    fmt.Sprintf("annulation livraison %s", l.NumeroBon),
		DateMouvement:   time.Now(),
		CreatedBy:       userID,
	}
	return stock.SortieInTx(mouvementRepo, stockRepo, compensation, false)
}

// recomputeStatut applique la fonction de transition pure et persiste le
// statut s'il a changé. Pose date_completion au passage en complete.
func recomputeStatut(dispatchRepo repository.DispatchRepository, d *entity.Dispatch, livraisons []*entity.Livraison) error {
	statut := domdispatch.ComputeStatut(d, livraisons)
	if statut == d.Statut {
		return nil
	}
	var dateCompletion *time.Time
	if statut == entity.DispatchStatutComplete {
		now := time.Now()
		dateCompletion = &now
	}
	d.Statut = statut
	d.DateCompletion = dateCompletion
	return dispatchRepo.UpdateStatut(d.ID, statut, dateCompletion)
}

// generateNumeroBon génère le numéro de bon : BLC (client) ou BLS (stock),
// séquence journalière.
func generateNumeroBon(typeLivraison string, now time.Time, seq int) string {
	prefix := "BLS"
	if typeLivraison == entity.LivraisonTypeClient {
		prefix = "BLC"
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("20060102"), seq)
}
