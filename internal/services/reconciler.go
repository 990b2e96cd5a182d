package services

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"onchain-teller-backend/internal/models"
)

// Reconciler recomputes displayed quantities from authoritative contract
// reads. It never mutates balance optimistically; the chain is the source of
// truth.
type Reconciler struct {
	state *DisplayStore
	redis *RedisService
}

func NewReconciler(state *DisplayStore, redis *RedisService) *Reconciler {
	return &Reconciler{
		state: state,
		redis: redis,
	}
}

// RefreshBalance issues a read-only getBalance query and republishes the
// displayed balance. Idempotent: with no intervening state change the same
// value comes back.
func (r *Reconciler) RefreshBalance(ctx context.Context, contract ContractSession) (string, error) {
	out, err := contract.Call(ctx, "getBalance")
	if err != nil {
		return "", fmt.Errorf("getBalance: %v", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("getBalance returned no value")
	}

	wei, ok := out[0].(*big.Int)
	if !ok {
		return "", fmt.Errorf("unexpected getBalance result type %T", out[0])
	}

	balance := models.FormatEther(wei)
	next := r.state.Publish(func(ds *models.DisplayState) {
		ds.Balance = balance
	})

	if r.redis != nil {
		if err := r.redis.SaveDisplaySnapshot(contract.Account(), &next); err != nil {
			log.Printf("Failed to cache display snapshot: %v", err)
		}
	}

	return balance, nil
}
