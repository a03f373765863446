// Package token implements balance, transfer and approve for a single
// ERC-20 token on top of an injected contract handle.
//
// Every operation validates its inputs before touching the network, so a
// malformed address or amount never costs an RPC round-trip. Remote failures
// come back as *NetworkError; nothing is retried or logged here.
package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/amount"
)

// Contract is the ERC-20 surface the client drives. *chain.ERC20 implements it.
type Contract interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Client is stateless apart from its contract handle and is safe for
// concurrent use.
type Client struct {
	contract Contract
	decimals uint8
}

// New returns a client for a token with the given decimals.
func New(contract Contract, decimals uint8) *Client {
	return &Client{contract: contract, decimals: decimals}
}

// Decimals returns the decimals used for amount conversion.
func (c *Client) Decimals() uint8 { return c.decimals }

// CheckBalance returns the balance of addr in whole tokens, e.g. "1.5".
func (c *Client) CheckBalance(ctx context.Context, addr string) (string, error) {
	owner, err := address.Validate(addr)
	if err != nil {
		return "", err
	}
	bal, err := c.contract.BalanceOf(ctx, owner)
	if err != nil {
		return "", &NetworkError{Op: OpCheckBalance, Err: err}
	}
	return amount.FromBaseUnits(bal, c.decimals), nil
}

// Allowance returns how much spender may still move for owner, in whole tokens.
func (c *Client) Allowance(ctx context.Context, owner, spender string) (string, error) {
	o, err := address.Validate(owner)
	if err != nil {
		return "", err
	}
	s, err := address.Validate(spender)
	if err != nil {
		return "", err
	}
	v, err := c.contract.Allowance(ctx, o, s)
	if err != nil {
		return "", &NetworkError{Op: OpAllowance, Err: err}
	}
	return amount.FromBaseUnits(v, c.decimals), nil
}

// TransferCbBTC sends amt tokens to recipient and returns the transaction
// hash once the transaction is mined successfully.
func (c *Client) TransferCbBTC(ctx context.Context, recipient, amt string) (string, error) {
	return c.submit(ctx, OpTransfer, recipient, amt, c.contract.Transfer)
}

// ApproveSpender sets spender's allowance to amt tokens and returns the
// transaction hash once mined.
func (c *Client) ApproveSpender(ctx context.Context, spender, amt string) (string, error) {
	return c.submit(ctx, OpApprove, spender, amt, c.contract.Approve)
}

type writeFunc func(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error)

func (c *Client) submit(ctx context.Context, op, to, amt string, write writeFunc) (string, error) {
	target, err := address.Validate(to)
	if err != nil {
		return "", err
	}
	units, err := amount.ToBaseUnits(amt, c.decimals)
	if err != nil {
		return "", err
	}

	tx, err := write(ctx, target, units)
	if err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}
	if _, err := c.contract.WaitMined(ctx, tx); err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}
	return tx.Hash().Hex(), nil
}
