package validator

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsAddress reports whether s is a 0x-prefixed 20-byte hex wallet address
func IsAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// NormalizeAddress lowercases a wallet address for storage and lookup
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
