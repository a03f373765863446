package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrReverted is returned by WaitMined when the receipt status is 0.
	ErrReverted = errors.New("transaction reverted")
	// ErrNoContract is returned when a read comes back empty, which is what
	// nodes answer for an address without code.
	ErrNoContract = errors.New("no contract code at address")
)

// ERC20 is a contract handle bound to one token address and the connector's key.
type ERC20 struct {
	conn     *Connector
	address  common.Address
	gasLimit uint64
	poll     time.Duration
}

// Address returns the token contract address.
func (t *ERC20) Address() common.Address { return t.address }

// GasLimit returns the fixed gas limit used for every write.
func (t *ERC20) GasLimit() uint64 { return t.gasLimit }

// BalanceOf returns the base-unit balance of owner.
func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callUint(ctx, "balanceOf", owner)
}

// Allowance returns how many base units spender may move on behalf of owner.
func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callUint(ctx, "allowance", owner, spender)
}

// Decimals returns the token's decimals() value.
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected result type %T", out[0])
	}
	return d, nil
}

// Transfer submits transfer(to, amount) and returns the signed transaction
// once the node has accepted it.
func (t *ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.send(ctx, "transfer", to, amount)
}

// Approve submits approve(spender, amount).
func (t *ERC20) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.send(ctx, "approve", spender, amount)
}

// WaitMined polls for the receipt of tx until it is mined or ctx is done.
func (t *ERC20) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	hash := tx.Hash()
	for {
		receipt, err := t.conn.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (t *ERC20) callUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := t.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

func (t *ERC20) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	res, err := t.conn.backend.CallContract(ctx, ethereum.CallMsg{
		From: t.conn.from,
		To:   &t.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%s: %w %s", method, ErrNoContract, t.address.Hex())
	}

	out, err := erc20ABI.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return out, nil
}

// send builds, signs and broadcasts an EIP-1559 call to the token contract
// with the fixed gas limit.
func (t *ERC20) send(ctx context.Context, method string, args ...any) (*types.Transaction, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	b := t.conn.backend
	nonce, err := b.PendingNonceAt(ctx, t.conn.from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}
	tip, err := b.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas tip: %w", err)
	}
	gasPrice, err := b.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	// Headroom for base-fee growth over the next few blocks.
	feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
	if feeCap.Cmp(tip) < 0 {
		feeCap = new(big.Int).Add(gasPrice, tip)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.conn.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       t.gasLimit,
		To:        &t.address,
		Value:     big.NewInt(0),
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.NewLondonSigner(t.conn.chainID), t.conn.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := b.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting %s: %w", method, err)
	}
	return signed, nil
}
