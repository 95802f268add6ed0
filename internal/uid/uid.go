// Package uid synthesizes protocol-valid identifiers deterministically from
// message content. Identical input always yields identical identifiers, which
// is what makes retries through the delivery tier idempotent: the cache keys
// on these values and a redelivered message reconstructs the exact same
// object.
package uid

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// Root is the fixed prefix for synthesized dotted-numeric identifiers. The
// 2.25 arc admits any 128-bit integer, so a hash prefix encodes directly.
const Root = "2.25."

// ContentHash returns the hex SHA-256 of canonical message text. Used as the
// dedup identifier when the message carries no control id of its own.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Derive builds a dotted-numeric identifier from a stable identifier and a
// fixed context label. The first 16 hash bytes are read as an unsigned
// big-endian integer, so the result is all-numeric, at most 44 characters,
// and never negative.
func Derive(stable, context string) string {
	sum := sha256.Sum256([]byte(stable + "/" + context))
	n := new(big.Int).SetBytes(sum[:16])
	return Root + n.String()
}
