package address

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vitalikLower    = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	vitalikChecksum = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
)

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidateLowercase(t *testing.T) {
	addr, err := Validate(vitalikLower)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(vitalikLower), addr)
}

func TestValidateUppercaseBody(t *testing.T) {
	_, err := Validate("0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045")
	assert.NoError(t, err)
}

func TestValidateChecksummed(t *testing.T) {
	addr, err := Validate(vitalikChecksum)
	require.NoError(t, err)
	assert.Equal(t, vitalikChecksum, addr.Hex())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no prefix", "d8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{"too short", "0xd8da6bf26964af9d7eed9e03e53415d37aa9604"},
		{"too long", "0xd8da6bf26964af9d7eed9e03e53415d37aa960450"},
		{"non hex", "0xz8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{"bad checksum", "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{"ens name", "vitalik.eth"},
		{"prefix only", "0x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.input)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestValidateErrorNamesInput(t *testing.T) {
	_, err := Validate("0x1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x1234")
}

// ---------------------------------------------------------------------------
// Checksum / IsChecksummed
// ---------------------------------------------------------------------------

func TestChecksumKnownAddresses(t *testing.T) {
	got, err := Checksum(vitalikLower)
	require.NoError(t, err)
	assert.Equal(t, vitalikChecksum, got)

	got, err = Checksum("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", got)
}

func TestChecksumMatchesGoEthereum(t *testing.T) {
	for _, in := range []string{vitalikLower, "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", "0xffffffffffffffffffffffffffffffffffffffff"} {
		got, err := Checksum(in)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(in).Hex(), got)
	}
}

func TestChecksumZeroAddress(t *testing.T) {
	got, err := Checksum("0x0000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", got)
}

func TestChecksumInvalid(t *testing.T) {
	_, err := Checksum("0xnothex")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestIsChecksummed(t *testing.T) {
	assert.True(t, IsChecksummed(vitalikChecksum))
	assert.False(t, IsChecksummed(vitalikLower))
	assert.False(t, IsChecksummed("garbage"))
}
