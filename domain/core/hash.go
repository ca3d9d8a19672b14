package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// RuleHash fingerprints a frozen binning rule
type RuleHash Hash

func (h RuleHash) String() string { return Hash(h).String() }

// ComputeRuleHash hashes a variable name, method and edges. Edges are written
// with full precision so two rules agree only if they bin identically.
func ComputeRuleHash(variable, method string, edges []float64) RuleHash {
	var data strings.Builder
	data.WriteString(variable)
	data.WriteByte('|')
	data.WriteString(method)
	for _, e := range edges {
		data.WriteByte('|')
		data.WriteString(strconv.FormatFloat(e, 'g', -1, 64))
	}
	return RuleHash(NewHash([]byte(data.String())))
}
