package e2e_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "cbbtc-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "cbbtc")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// runCLI runs the binary in an empty directory with no cbBTC variables set.
func runCLI(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = cleanEnv()
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return string(out), 0
}

func cleanEnv() []string {
	drop := map[string]bool{
		"PRIVATE_KEY": true, "CBBTC_KEYCHAIN_ITEM": true, "RPC_URL": true,
		"CBBTC_CONTRACT_ADDRESS": true, "CBBTC_DECIMALS": true, "CBBTC_GAS_LIMIT": true,
		"CHAIN_ID": true, "CBBTC_CONFIRM_TIMEOUT": true,
	}
	var env []string
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); !drop[k] {
			env = append(env, kv)
		}
	}
	return env
}

func TestVersionFlag(t *testing.T) {
	out, code := runCLI(t, "", "--version")
	assert.Zero(t, code)
	assert.Contains(t, out, "cbbtc")
}

func TestHelpCommand(t *testing.T) {
	out, code := runCLI(t, "", "--help")
	assert.Zero(t, code)
	for _, c := range []string{"balance", "transfer", "approve", "allowance", "checksum", "convert"} {
		assert.Contains(t, out, c)
	}
	assert.Contains(t, out, "PRIVATE_KEY")
	assert.Contains(t, out, "--rpc-url")
}

func TestChecksum(t *testing.T) {
	out, code := runCLI(t, "", "checksum", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	assert.Zero(t, code)
	assert.Contains(t, out, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
}

func TestChecksumInvalid(t *testing.T) {
	out, code := runCLI(t, "", "checksum", "0xnothex")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "invalid address")
}

func TestConvert(t *testing.T) {
	out, code := runCLI(t, "", "convert", "0.015")
	assert.Zero(t, code)
	assert.Contains(t, out, "1500000")
}

func TestBalanceWithoutKey(t *testing.T) {
	out, code := runCLI(t, "", "--rpc-url", "http://127.0.0.1:1", "balance")
	assert.Equal(t, 3, code)
	assert.Contains(t, out, "PRIVATE_KEY")
}

func TestBalanceWithoutEndpoint(t *testing.T) {
	cmd := exec.Command(binaryPath, "balance")
	cmd.Dir = t.TempDir()
	cmd.Env = append(cleanEnv(), "PRIVATE_KEY=ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, string(out), "RPC_URL")
}

func TestTransferRejectsBadAmountOffline(t *testing.T) {
	// No key and no endpoint: the amount must be rejected before either is needed.
	out, code := runCLI(t, "", "transfer", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "0", "--yes")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "greater than zero")
}

func TestEnvFileFlagMissing(t *testing.T) {
	_, code := runCLI(t, "", "--env-file", "missing.env", "convert", "1")
	assert.NotZero(t, code)
}
