package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractSession is the slice of a bound contract the orchestration layer
// touches. Implemented by *chain.Binding; faked in tests.
type ContractSession interface {
	Account() string
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error)
	WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	DecodeEvent(receipt *types.Receipt, name string) (map[string]interface{}, bool)
}
