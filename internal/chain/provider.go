// Package chain wraps the wallet-capable JSON-RPC provider and the bound
// contract handles built on top of it via go-ethereum.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	ethereum "github.com/ethereum/go-ethereum"
)

// Provider is a handle to a signer-capable node endpoint. Account signing
// happens on the provider side; the backend never holds keys.
type Provider struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Detect dials the configured endpoint. Absence of a provider (no URL, or
// the dial fails) is a normal reportable state, not an error.
func Detect(ctx context.Context, rpcURL string) (*Provider, bool) {
	if rpcURL == "" {
		return nil, false
	}

	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, false
	}

	return &Provider{
		rpc: client,
		eth: ethclient.NewClient(client),
	}, true
}

// Accounts lists the provider's accounts without prompting the user.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts asks the provider for account access. This may block until
// the user approves or denies in the wallet UI.
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *Provider) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return p.eth.CallContract(ctx, msg, blockNumber)
}

func (p *Provider) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return p.eth.TransactionReceipt(ctx, txHash)
}

// SendContractTransaction submits a state-changing call through the provider.
// The provider signs as `from`; value and data are optional per call.
func (p *Provider) SendContractTransaction(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	arg := map[string]interface{}{
		"from": from,
		"to":   to,
	}
	if value != nil && value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(value)
	}
	if len(data) > 0 {
		arg["data"] = hexutil.Bytes(data)
	}

	var txHash common.Hash
	if err := p.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, err
	}
	return txHash, nil
}

func (p *Provider) Close() {
	p.rpc.Close()
}
