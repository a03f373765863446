package config

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/chain"
)

// Environment variable names.
const (
	EnvPrivateKey     = "PRIVATE_KEY"
	EnvKeychainItem   = "CBBTC_KEYCHAIN_ITEM"
	EnvRPCURL         = "RPC_URL"
	EnvContract       = "CBBTC_CONTRACT_ADDRESS"
	EnvDecimals       = "CBBTC_DECIMALS"
	EnvGasLimit       = "CBBTC_GAS_LIMIT"
	EnvChainID        = "CHAIN_ID"
	EnvConfirmTimeout = "CBBTC_CONFIRM_TIMEOUT"
)

const (
	// DefaultContract is cbBTC, deployed at the same address on Ethereum and Base.
	DefaultContract       = "0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf"
	DefaultDecimals       = uint8(8)
	DefaultConfirmTimeout = 3 * time.Minute
	DefaultEnvFile        = ".env"
)

// Config holds everything the CLI needs to build a token client.
type Config struct {
	PrivateKey     string
	KeychainItem   string
	RPCURL         string
	Contract       common.Address
	Decimals       uint8
	DecimalsSet    bool // CBBTC_DECIMALS given; otherwise ask the contract
	GasLimit       uint64
	ChainID        *big.Int // nil = ask the node
	ConfirmTimeout time.Duration
}

// Load reads envFile (if present) into the process environment without
// overriding variables that are already set, then builds a Config from the
// environment. A missing envFile is not an error.
//
// An absent key or RPC URL is not reported here; chain.Dial rejects those.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	cfg := defaults()
	cfg.PrivateKey = strings.TrimSpace(os.Getenv(EnvPrivateKey))
	cfg.KeychainItem = strings.TrimSpace(os.Getenv(EnvKeychainItem))
	cfg.RPCURL = strings.TrimSpace(os.Getenv(EnvRPCURL))

	if v := getEnv(EnvContract); v != "" {
		addr, err := address.Validate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvContract, err)
		}
		cfg.Contract = addr
	}
	if v := getEnv(EnvDecimals); v != "" {
		d, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid decimals %q", EnvDecimals, v)
		}
		cfg.Decimals = uint8(d)
		cfg.DecimalsSet = true
	}
	if v := getEnv(EnvGasLimit); v != "" {
		g, err := strconv.ParseUint(v, 10, 64)
		if err != nil || g == 0 {
			return nil, fmt.Errorf("%s: invalid gas limit %q", EnvGasLimit, v)
		}
		cfg.GasLimit = g
	}
	if v := getEnv(EnvChainID); v != "" {
		id, ok := new(big.Int).SetString(v, 10)
		if !ok || id.Sign() <= 0 {
			return nil, fmt.Errorf("%s: invalid chain id %q", EnvChainID, v)
		}
		cfg.ChainID = id
	}
	if v := getEnv(EnvConfirmTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", EnvConfirmTimeout, v)
		}
		cfg.ConfirmTimeout = d
	}
	return cfg, nil
}

// ChainConfig returns the connector settings. key is the resolved signing key,
// which may come from the environment or the keychain.
func (c *Config) ChainConfig(key string) chain.Config {
	return chain.Config{
		RPCURL:     c.RPCURL,
		PrivateKey: key,
		Contract:   c.Contract,
		ChainID:    c.ChainID,
		GasLimit:   c.GasLimit,
	}
}

// ResolveDecimals returns the configured decimals when CBBTC_DECIMALS was
// given, and otherwise the value read from the contract.
func (c *Config) ResolveDecimals(ctx context.Context, read func(context.Context) (uint8, error)) (uint8, error) {
	if c.DecimalsSet {
		return c.Decimals, nil
	}
	d, err := read(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading decimals of %s (set %s to skip): %w", c.Contract.Hex(), EnvDecimals, err)
	}
	return d, nil
}

// String renders the config with the private key redacted.
func (c *Config) String() string {
	key := "<unset>"
	if c.PrivateKey != "" {
		key = "<redacted>"
	}
	chainID := "auto"
	if c.ChainID != nil {
		chainID = c.ChainID.String()
	}
	return fmt.Sprintf("rpc=%s contract=%s decimals=%d gas_limit=%d chain_id=%s key=%s keychain_item=%q",
		c.RPCURL, c.Contract.Hex(), c.Decimals, c.GasLimit, chainID, key, c.KeychainItem)
}

// --- helpers ---

func defaults() *Config {
	return &Config{
		Contract:       common.HexToAddress(DefaultContract),
		Decimals:       DefaultDecimals,
		GasLimit:       chain.DefaultGasLimit,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
