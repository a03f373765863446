// Package wallet looks up the signing key in the OS keychain when it is not
// supplied through the environment.
package wallet

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "cbbtc"

// ErrKeyNotFound is returned when the keychain has no item for a reference.
var ErrKeyNotFound = errors.New("key not found in keychain")

// Keystore reads private keys from an OS keychain. It never writes.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore opens the platform keychain for the cbbtc service.
func DefaultKeystore() (*Keystore, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  "~/.cbbtc/keys",
		FilePasswordFunc:         keyring.TerminalPrompt,
	}

	// Headless Linux has no secret service; the file backend still works.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening keychain: %w", err)
	}
	return &Keystore{ring: ring}, nil
}

// NewKeystore wraps an already opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// Retrieve returns the hex private key stored under ref, without a 0x prefix.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve %s: %w", ref, err)
	}
	key := normaliseHexKey(string(item.Data))
	if key == "" {
		return "", fmt.Errorf("keychain item %s is empty", ref)
	}
	return key, nil
}

// ResolveKey returns envKey when set, otherwise the key stored under ref.
// Both empty yields "", leaving the connector to report the missing credential.
func ResolveKey(envKey, ref string, open func() (*Keystore, error)) (string, error) {
	if k := normaliseHexKey(envKey); k != "" {
		return k, nil
	}
	if ref == "" {
		return "", nil
	}
	ks, err := open()
	if err != nil {
		return "", err
	}
	return ks.Retrieve(ref)
}

func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return s
}
