package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/chain"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/config"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/token"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/wallet"
)

// session is what a network command works with.
type session struct {
	client   *token.Client
	from     common.Address
	chainID  *big.Int
	contract common.Address
	gasLimit uint64
	close    func()
}

// openSession resolves the signing key, dials the endpoint and binds the
// token. Replaced in tests.
var openSession = func(ctx context.Context, c *config.Config) (*session, error) {
	key, err := wallet.ResolveKey(c.PrivateKey, c.KeychainItem, wallet.DefaultKeystore)
	if err != nil {
		return nil, err
	}

	conn, err := chain.Dial(ctx, c.ChainConfig(key))
	switch {
	case errors.Is(err, chain.ErrMissingCredential):
		return nil, fmt.Errorf("%w: set %s or %s", err, config.EnvPrivateKey, config.EnvKeychainItem)
	case errors.Is(err, chain.ErrMissingEndpoint):
		return nil, fmt.Errorf("%w: set %s or pass --rpc-url", err, config.EnvRPCURL)
	case err != nil:
		return nil, err
	}
	decimals, err := c.ResolveDecimals(ctx, conn.Token().Decimals)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug("connected",
		zap.String("rpc", c.RPCURL),
		zap.String("chain_id", conn.ChainID().String()),
		zap.String("from", conn.From().Hex()),
		zap.String("contract", c.Contract.Hex()),
		zap.Uint8("decimals", decimals))

	return &session{
		client:   token.New(conn.Token(), decimals),
		from:     conn.From(),
		chainID:  conn.ChainID(),
		contract: conn.Token().Address(),
		gasLimit: conn.Token().GasLimit(),
		close:    conn.Close,
	}, nil
}

// deadline bounds one network step by the configured confirm timeout.
func deadline(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, cfg.ConfirmTimeout)
}

// withSession runs fn with a session under the configured deadline.
func withSession(parent context.Context, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := deadline(parent)
	defer cancel()

	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}
