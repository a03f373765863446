// Package chain binds an ERC-20 contract over go-ethereum and signs writes.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Construction errors. Both are reported before any network I/O.
var (
	ErrMissingCredential = errors.New("missing signing credential")
	ErrMissingEndpoint   = errors.New("missing RPC endpoint")
	ErrInvalidCredential = errors.New("invalid signing credential")
)

// Defaults applied when the corresponding Config field is zero.
const (
	// DefaultGasLimit is a fixed upper bound for transfer/approve calls.
	// Actual gas used is far lower; the node refunds the rest.
	DefaultGasLimit     = uint64(500_000)
	DefaultPollInterval = 2 * time.Second
)

// Backend is the part of *ethclient.Client the connector uses.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config describes one token contract on one chain and the key that signs for it.
type Config struct {
	RPCURL     string
	PrivateKey string
	Contract   common.Address
	// ChainID is queried from the node when nil.
	ChainID      *big.Int
	GasLimit     uint64
	PollInterval time.Duration
}

// Connector owns the signing key and the RPC connection. It is immutable
// after construction and safe for concurrent use.
type Connector struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	token   *ERC20
	closeFn func()
}

// Dial validates cfg, connects to cfg.RPCURL and binds the token contract.
func Dial(ctx context.Context, cfg Config) (*Connector, error) {
	key, err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.RPCURL, err)
	}

	c, err := newConnector(ctx, cfg, key, client)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.closeFn = client.Close
	return c, nil
}

// New is like Dial but uses an existing backend. cfg.RPCURL is still
// required so that misconfiguration is caught the same way.
func New(ctx context.Context, cfg Config, backend Backend) (*Connector, error) {
	key, err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newConnector(ctx, cfg, key, backend)
}

func newConnector(ctx context.Context, cfg Config, key *ecdsa.PrivateKey, backend Backend) (*Connector, error) {
	chainID := cfg.ChainID
	if chainID == nil {
		id, err := backend.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying chain id: %w", err)
		}
		chainID = id
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	c := &Connector{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
		closeFn: func() {},
	}
	c.token = &ERC20{
		conn:     c,
		address:  cfg.Contract,
		gasLimit: gasLimit,
		poll:     poll,
	}
	return c, nil
}

func checkConfig(cfg Config) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(cfg.PrivateKey)
	if raw == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, ErrMissingEndpoint
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		// The parse error can echo key material, so it is not wrapped.
		return nil, fmt.Errorf("%w: expected 32-byte hex secp256k1 key", ErrInvalidCredential)
	}
	return key, nil
}

// Token returns the bound ERC-20 contract handle.
func (c *Connector) Token() *ERC20 { return c.token }

// From returns the address derived from the signing key.
func (c *Connector) From() common.Address { return c.from }

// ChainID returns the chain ID transactions are signed for.
func (c *Connector) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// Close releases the RPC connection.
func (c *Connector) Close() { c.closeFn() }
