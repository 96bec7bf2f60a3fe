package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain"
	domdispatch "github.com/sotramag/tonnage-api/internal/domain/dispatch"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// AllocatorUseCase crée les dispatches : la décision de répartir une quantité
// entre livraison directe client et mise en stock magasin. La décision est
// séparée du mouvement physique : le stock ne bouge qu'à la confirmation des
// livraisons, un mouvement de type dispatch trace l'allocation.
type AllocatorUseCase struct {
	txRunner    TxRunner
	produitRepo repository.ProduitRepository
	magasinRepo repository.MagasinRepository
	clientRepo  repository.ClientRepository
}

// NewAllocatorUseCase construit le cas d'usage.
func NewAllocatorUseCase(
	txRunner TxRunner,
	produitRepo repository.ProduitRepository,
	magasinRepo repository.MagasinRepository,
	clientRepo repository.ClientRepository,
) *AllocatorUseCase {
	return &AllocatorUseCase{
		txRunner:    txRunner,
		produitRepo: produitRepo,
		magasinRepo: magasinRepo,
		clientRepo:  clientRepo,
	}
}

// CreateDispatchInput entrée pour la création d'un dispatch.
type CreateDispatchInput struct {
	ManagerID            string
	ClientID             string
	ProduitID            string
	MagasinSourceID      string
	MagasinDestinationID string
	QuantiteTotale       decimal.Decimal
	QuantiteClient       decimal.Decimal
	QuantiteStock        decimal.Decimal
	Notes                string
	// SourceExterne : la quantité vient d'une réception navire pas encore
	// reflétée dans le journal ; le contrôle de disponibilité au magasin
	// source est alors sauté.
	SourceExterne bool
}

// CreateDispatch valide les quantités et l'invariant de somme, contrôle la
// disponibilité au magasin source (sauf source externe), puis persiste le
// dispatch en statut planifie et le mouvement d'audit de type dispatch dans
// la même transaction.
func (uc *AllocatorUseCase) CreateDispatch(ctx context.Context, input CreateDispatchInput) (*entity.Dispatch, error) {
	if input.ManagerID == "" || input.ClientID == "" || input.ProduitID == "" ||
		input.MagasinSourceID == "" || input.MagasinDestinationID == "" {
		return nil, domain.ErrValidation
	}
	if !input.QuantiteTotale.GreaterThan(decimal.Zero) ||
		input.QuantiteClient.IsNegative() || input.QuantiteStock.IsNegative() {
		return nil, domain.ErrValidation
	}
	// Invariant : quantite_client + quantite_stock == quantite_totale (±0.01).
	somme := input.QuantiteClient.Add(input.QuantiteStock)
	if somme.Sub(input.QuantiteTotale).Abs().GreaterThan(domdispatch.Tolerance) {
		return nil, domain.ErrValidation
	}

	if err := uc.checkReferences(input); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &entity.Dispatch{
		ID:                   uuid.New().String(),
		ManagerID:            input.ManagerID,
		ClientID:             input.ClientID,
		ProduitID:            input.ProduitID,
		MagasinSourceID:      input.MagasinSourceID,
		MagasinDestinationID: input.MagasinDestinationID,
		QuantiteTotale:       input.QuantiteTotale,
		QuantiteClient:       input.QuantiteClient,
		QuantiteStock:        input.QuantiteStock,
		TypeDispatch:         entity.DeriveTypeDispatch(input.QuantiteClient, input.QuantiteStock),
		Statut:               entity.DispatchStatutPlanifie,
		Notes:                input.Notes,
		DateCreation:         now,
	}

	err := uc.txRunner.RunDispatch(ctx, func(
		dispatchRepo repository.DispatchRepository,
		livraisonRepo repository.LivraisonRepository,
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error {
		if !input.SourceExterne {
			s, err := stockRepo.Get(input.ProduitID, input.MagasinSourceID)
			if err != nil {
				return err
			}
			if s.QuantiteDisponible.LessThan(input.QuantiteTotale) {
				return domain.ErrInsufficientStock
			}
		}

		seq, err := dispatchRepo.CountForMonth(now.Year(), now.Month())
		if err != nil {
			return err
		}
		d.NumeroDispatch = fmt.Sprintf("DISP-%s-%04d", now.Format("200601"), seq+1)

		if err := dispatchRepo.Create(d); err != nil {
			return err
		}

		// Trace d'allocation : par contrat, un mouvement dispatch ne modifie
		// jamais quantite_disponible.
		source := d.MagasinSourceID
		destination := d.MagasinDestinationID
		return mouvementRepo.Create(&entity.Mouvement{
			ID:                   uuid.New().String(),
			Type:                 entity.MouvementTypeDispatch,
			ProduitID:            d.ProduitID,
			MagasinSourceID:      &source,
			MagasinDestinationID: &destination,
			Quantite:             d.QuantiteTotale,
			Reference:            d.NumeroDispatch,
			Observations:         d.Notes,
			DateMouvement:        now,
			CreatedBy:            d.ManagerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *AllocatorUseCase) checkReferences(input CreateDispatchInput) error {
	produit, err := uc.produitRepo.GetByID(input.ProduitID)
	if err != nil {
		return err
	}
	if produit == nil {
		return domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}
	for _, magasinID := range []string{input.MagasinSourceID, input.MagasinDestinationID} {
		magasin, err := uc.magasinRepo.GetByID(magasinID)
		if err != nil {
			return err
		}
		if magasin == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
