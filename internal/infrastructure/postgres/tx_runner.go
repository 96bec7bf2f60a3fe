package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	appdispatch "github.com/sotramag/tonnage-api/internal/application/dispatch"
	appstock "github.com/sotramag/tonnage-api/internal/application/stock"
	"github.com/sotramag/tonnage-api/internal/domain"
	"github.com/sotramag/tonnage-api/internal/domain/repository"
)

// Ensure TxRunner implements stock.TxRunner and dispatch.TxRunner.
var _ appstock.TxRunner = (*TxRunner)(nil)
var _ appdispatch.TxRunner = (*TxRunner)(nil)

// Nombre de tentatives sur échec de sérialisation ou deadlock avant de
// remonter ErrConcurrencyConflict à l'appelant.
const txMaxAttempts = 3

// TxRunner exécute des callbacks dans une transaction PostgreSQL, avec
// rejeu borné des échecs de sérialisation.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construit le runner avec le pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transaction pour le journal de stock : mouvements + projection.
func (r *TxRunner) Run(ctx context.Context, fn func(
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.withRetry(ctx, func(tx Querier) error {
		return fn(NewMouvementRepository(tx), NewStockRepository(tx))
	})
}

// RunDispatch transaction pour le moteur de dispatch : les quatre
// repositories liés à la même transaction.
func (r *TxRunner) RunDispatch(ctx context.Context, fn func(
	dispatchRepo repository.DispatchRepository,
	livraisonRepo repository.LivraisonRepository,
	mouvementRepo repository.MouvementRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.withRetry(ctx, func(tx Querier) error {
		return fn(
			NewDispatchRepository(tx),
			NewLivraisonRepository(tx),
			NewMouvementRepository(tx),
			NewStockRepository(tx),
		)
	})
}

// withRetry démarre la transaction, exécute fn et Commit/Rollback. Les
// échecs de sérialisation et les collisions de numéros générés sont rejoués
// jusqu'à txMaxAttempts fois (le rejeu recompte les séquences), puis remontés
// en domain.ErrConcurrencyConflict.
func (r *TxRunner) withRetry(ctx context.Context, fn func(tx Querier) error) error {
	var lastErr error
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isReplayable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
