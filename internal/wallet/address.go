// Package wallet handles EVM account addresses supplied by the browser wallet.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for anything that is not 0x followed by 40 hex digits.
var ErrInvalidAddress = errors.New("invalid wallet address")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// profileNamespace scopes profile ids derived from addresses.
var profileNamespace = uuid.MustParse("8f4b3c2e-6a1d-5e7f-9b0a-2c4d6e8f1a3b")

// ValidateAddress checks EVM address syntax. Checksum casing is not enforced.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(strings.TrimSpace(address)) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// NormalizeAddress returns the trimmed, lowercase form used for identity comparisons.
func NormalizeAddress(address string) (string, error) {
	if err := ValidateAddress(address); err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(address)), nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of an address.
func ChecksumAddress(address string) (string, error) {
	lower, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	digits := lower[2:]

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(digits))
	hash := hex.EncodeToString(h.Sum(nil))

	out := []byte(digits)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}

// ShortenAddress returns the first six and last four characters joined by "...".
// Strings too short to shorten are returned unchanged.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// ProfileID derives a stable profile id from an address, so the same wallet
// always maps to the same profile regardless of casing.
func ProfileID(address string) (string, error) {
	lower, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(profileNamespace, []byte(lower)).String(), nil
}
