package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	ethereum "github.com/ethereum/go-ethereum"
)

// Backend is the slice of provider behavior a bound contract needs.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	SendContractTransaction(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (common.Hash, error)
}

// Profile names the operations and events an application expects its
// contract to expose. Unknown-shape artifacts are rejected at bind time,
// not at call time.
type Profile struct {
	Name    string
	Methods []string
	Events  []string
}

var (
	ATMProfile = Profile{
		Name:    "atm",
		Methods: []string{"deposit", "withdraw", "transfer", "getBalance"},
		Events:  []string{"Deposit", "Withdraw", "Transfer"},
	}
	GameProfile = Profile{
		Name:    "game",
		Methods: []string{"placeBet", "setDifficulty", "revealNumber", "getBalance"},
		Events:  []string{"BetResult", "DifficultyChanged", "NumberRevealed"},
	}
)

// Binding is a session-scoped handle to one deployed contract. Every
// transact through it is signed by the provider as the bound account.
// Immutable after construction; reconnecting builds a new one.
type Binding struct {
	address common.Address
	account common.Address
	abi     abi.ABI
	backend Backend
}

// Bind constructs a contract handle for the active account. Callers must
// have a detected provider and a connected account; passing either as empty
// is a caller error.
func Bind(backend Backend, account, address string, contractABI abi.ABI, profile Profile) (*Binding, error) {
	if backend == nil {
		return nil, fmt.Errorf("bind %s: no provider", profile.Name)
	}
	if account == "" {
		return nil, fmt.Errorf("bind %s: no connected account", profile.Name)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("bind %s: invalid contract address %q", profile.Name, address)
	}

	for _, method := range profile.Methods {
		if _, ok := contractABI.Methods[method]; !ok {
			return nil, fmt.Errorf("bind %s: abi missing method %q", profile.Name, method)
		}
	}
	for _, event := range profile.Events {
		if _, ok := contractABI.Events[event]; !ok {
			return nil, fmt.Errorf("bind %s: abi missing event %q", profile.Name, event)
		}
	}

	return &Binding{
		address: common.HexToAddress(address),
		account: common.HexToAddress(account),
		abi:     contractABI,
		backend: backend,
	}, nil
}

func (b *Binding) Account() string {
	return b.account.Hex()
}

// Call issues a read-only contract query. No state changes, no signing cost.
func (b *Binding) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %v", method, err)
	}

	out, err := b.backend.CallContract(ctx, ethereum.CallMsg{
		From: b.account,
		To:   &b.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, err
	}

	return b.abi.Unpack(method, out)
}

// Transact submits a state-changing call signed as the bound account.
// Blocks only for submission; confirmation is a separate wait.
func (b *Binding) Transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %v", method, err)
	}
	return b.backend.SendContractTransaction(ctx, b.account, b.address, value, data)
}

// WaitMined polls for the transaction receipt until the context ends. There
// is no client-side deadline; block inclusion time is the provider's to
// bound.
func (b *Binding) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		receipt, err := b.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("transaction %s reverted", txHash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// DecodeEvent extracts the named event's fields from a receipt. Returns
// ok=false when the contract emitted no matching log.
func (b *Binding) DecodeEvent(receipt *types.Receipt, name string) (map[string]interface{}, bool) {
	event, ok := b.abi.Events[name]
	if !ok {
		return nil, false
	}

	for _, lg := range receipt.Logs {
		if lg.Address != b.address || len(lg.Topics) == 0 || lg.Topics[0] != event.ID {
			continue
		}

		out := make(map[string]interface{})
		if len(lg.Data) > 0 {
			if err := b.abi.UnpackIntoMap(out, name, lg.Data); err != nil {
				continue
			}
		}

		var indexed abi.Arguments
		for _, arg := range event.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopicsIntoMap(out, indexed, lg.Topics[1:]); err != nil {
				continue
			}
		}

		return out, true
	}

	return nil, false
}
