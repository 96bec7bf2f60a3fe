package stock

import (
	"context"

	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// TxRunner exécute une fonction dans une transaction de BD, en passant des
// repositories liés à cette transaction. Garantit l'atomicité
// journal + projection : jamais de mouvement appliqué sans mise à jour du
// stock, ni l'inverse.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		mouvementRepo repository.MouvementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
