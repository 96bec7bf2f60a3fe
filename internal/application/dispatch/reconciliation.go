package dispatch

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain"
	domdispatch "github.com/sotramag/tonnage-api/internal/domain/dispatch"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// ReporterUseCase calcule les vues de rapprochement : avancement par
// dispatch et rapport des écarts dispatché/reçu. Lecture seule, sans effet
// de bord — calculable à tout moment sur une vue read-committed, les
// livraisons annulées exclues des cumuls.
type ReporterUseCase struct {
	dispatchRepo  repository.DispatchRepository
	livraisonRepo repository.LivraisonRepository
}

// NewReporterUseCase construit le cas d'usage.
func NewReporterUseCase(
	dispatchRepo repository.DispatchRepository,
	livraisonRepo repository.LivraisonRepository,
) *ReporterUseCase {
	return &ReporterUseCase{dispatchRepo: dispatchRepo, livraisonRepo: livraisonRepo}
}

// SousAllocationProgress avancement d'une sous-allocation.
type SousAllocationProgress struct {
	QuantitePrevue   decimal.Decimal
	QuantiteLivree   decimal.Decimal
	QuantiteRestante decimal.Decimal
}

// DispatchProgress avancement complet d'un dispatch.
type DispatchProgress struct {
	Dispatch   *entity.Dispatch
	Livraisons []*entity.Livraison
	Client     SousAllocationProgress
	Stock      SousAllocationProgress
	Total      SousAllocationProgress
}

// GetDispatchProgress retourne, par sous-allocation, le prévu, le livré
// (somme des livraisons non annulées du type) et le restant (plancher zéro),
// plus les totaux.
func (uc *ReporterUseCase) GetDispatchProgress(ctx context.Context, dispatchID string) (*DispatchProgress, error) {
	d, err := uc.dispatchRepo.GetByID(dispatchID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	livraisons, err := uc.livraisonRepo.ListByDispatch(dispatchID)
	if err != nil {
		return nil, err
	}
	return buildProgress(d, livraisons), nil
}

func buildProgress(d *entity.Dispatch, livraisons []*entity.Livraison) *DispatchProgress {
	livreClient := domdispatch.LivreParType(livraisons, entity.LivraisonTypeClient)
	livreStock := domdispatch.LivreParType(livraisons, entity.LivraisonTypeStock)
	livreTotal := livreClient.Add(livreStock)
	return &DispatchProgress{
		Dispatch:   d,
		Livraisons: livraisons,
		Client: SousAllocationProgress{
			QuantitePrevue:   d.QuantiteClient,
			QuantiteLivree:   livreClient,
			QuantiteRestante: domdispatch.Restant(d.QuantiteClient, livreClient),
		},
		Stock: SousAllocationProgress{
			QuantitePrevue:   d.QuantiteStock,
			QuantiteLivree:   livreStock,
			QuantiteRestante: domdispatch.Restant(d.QuantiteStock, livreStock),
		},
		Total: SousAllocationProgress{
			QuantitePrevue:   d.QuantiteTotale,
			QuantiteLivree:   livreTotal,
			QuantiteRestante: domdispatch.Restant(d.QuantiteTotale, livreTotal),
		},
	}
}

// ListDispatchesWithProgress liste les dispatches filtrés avec leur avancement.
func (uc *ReporterUseCase) ListDispatchesWithProgress(ctx context.Context, f repository.DispatchFilter) ([]*DispatchProgress, error) {
	dispatches, err := uc.dispatchRepo.List(f)
	if err != nil {
		return nil, err
	}
	result := make([]*DispatchProgress, 0, len(dispatches))
	for _, d := range dispatches {
		livraisons, err := uc.livraisonRepo.ListByDispatch(d.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, buildProgress(d, livraisons))
	}
	return result, nil
}

// LigneEcart une ligne du rapport des écarts pour un dispatch.
type LigneEcart struct {
	Dispatch           *entity.Dispatch
	QuantiteDispatchee decimal.Decimal // sous-allocation stock
	QuantiteRecue      decimal.Decimal // livraisons stock non annulées
	Ecart              decimal.Decimal
	EcartPourcentage   decimal.Decimal
	Statut             string // conforme | manque | exces
}

// EcartFilter critères du rapport des écarts.
type EcartFilter struct {
	repository.DispatchFilter
	// TypeEcart filtre par classification : conforme, manque, exces ; vide = tous.
	TypeEcart string
}

// GetRapportEcarts calcule, pour les dispatches non annulés couverts par le
// filtre, l'écart entre la quantité dispatchée vers le stock et la quantité
// effectivement reçue au magasin destination. La pagination s'applique après
// le filtre de classification : paginer en SQL puis filtrer ferait rétrécir
// les pages au gré des classes rencontrées.
func (uc *ReporterUseCase) GetRapportEcarts(ctx context.Context, f EcartFilter) ([]*LigneEcart, error) {
	listFilter := f.DispatchFilter
	listFilter.Limit = 0
	listFilter.Offset = 0
	dispatches, err := uc.dispatchRepo.List(listFilter)
	if err != nil {
		return nil, err
	}
	lignes := make([]*LigneEcart, 0, len(dispatches))
	for _, d := range dispatches {
		if d.Statut == entity.DispatchStatutAnnule {
			continue
		}
		livraisons, err := uc.livraisonRepo.ListByDispatch(d.ID)
		if err != nil {
			return nil, err
		}
		recue := domdispatch.LivreParType(livraisons, entity.LivraisonTypeStock)
		ecart := d.QuantiteStock.Sub(recue)
		ligne := &LigneEcart{
			Dispatch:           d,
			QuantiteDispatchee: d.QuantiteStock,
			QuantiteRecue:      recue,
			Ecart:              ecart,
			EcartPourcentage:   domdispatch.EcartPourcentage(ecart, d.QuantiteStock),
			Statut:             domdispatch.ClassifyEcart(ecart),
		}
		if f.TypeEcart != "" && f.TypeEcart != "tous" && ligne.Statut != f.TypeEcart {
			continue
		}
		lignes = append(lignes, ligne)
	}
	return pageLignes(lignes, f.Offset, f.Limit), nil
}

func pageLignes(lignes []*LigneEcart, offset, limit int) []*LigneEcart {
	if offset > 0 {
		if offset >= len(lignes) {
			return nil
		}
		lignes = lignes[offset:]
	}
	if limit > 0 && limit < len(lignes) {
		lignes = lignes[:limit]
	}
	return lignes
}
