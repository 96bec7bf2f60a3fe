package dispatch

import (
	"context"

	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// TxRunner exécute une fonction dans une transaction de BD avec les quatre
// repositories du moteur liés à cette transaction. Toute mutation
// (création de dispatch, enregistrement ou annulation de livraison) passe
// par ici : un rejet laisse dispatch, livraisons et stock exactement dans
// l'état d'avant l'appel.
type TxRunner interface {
	RunDispatch(ctx context.Context, fn func(
		dispatchRepo repository.DispatchRepository,
		livraisonRepo repository.LivraisonRepository,
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
