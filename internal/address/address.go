// Package address validates EVM addresses and their EIP-55 checksums.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for any string that is not a usable EVM address.
var ErrInvalidAddress = errors.New("invalid address")

// Validate parses s as a 0x-prefixed 20-byte hex address.
//
// All-lowercase and all-uppercase hex are accepted as is. Mixed case is taken
// as an EIP-55 checksum and must match exactly.
func Validate(s string) (common.Address, error) {
	clean, err := hexBody(s)
	if err != nil {
		return common.Address{}, err
	}
	if isMixedCase(clean) && "0x"+clean != toChecksum(clean) {
		return common.Address{}, fmt.Errorf("%w %q: checksum mismatch", ErrInvalidAddress, s)
	}
	return common.HexToAddress(clean), nil
}

// Checksum returns the EIP-55 form of s.
func Checksum(s string) (string, error) {
	clean, err := hexBody(s)
	if err != nil {
		return "", err
	}
	return toChecksum(clean), nil
}

// IsChecksummed reports whether s is already in EIP-55 form.
func IsChecksummed(s string) bool {
	clean, err := hexBody(s)
	if err != nil {
		return false
	}
	return s == toChecksum(clean)
}

func hexBody(s string) (string, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", fmt.Errorf("%w %q: missing 0x prefix", ErrInvalidAddress, s)
	}
	clean := s[2:]
	if len(clean) != 2*common.AddressLength {
		return "", fmt.Errorf("%w %q: expected 40 hex chars, got %d", ErrInvalidAddress, s, len(clean))
	}
	if _, err := hex.DecodeString(clean); err != nil {
		return "", fmt.Errorf("%w %q: not hex", ErrInvalidAddress, s)
	}
	return clean, nil
}

func isMixedCase(s string) bool {
	return s != strings.ToLower(s) && s != strings.ToUpper(s)
}

// toChecksum implements EIP-55 mixed-case checksum encoding over 40 hex chars.
func toChecksum(addr string) string {
	lower := strings.ToLower(addr)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	var sb strings.Builder
	sb.WriteString("0x")
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		// Letters whose hash nibble is >= 8 are uppercased.
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c -= 'a' - 'A'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
