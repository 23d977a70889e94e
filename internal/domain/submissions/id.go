// Package submissions generates human readable submission identifiers.
package submissions

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Identifier prefixes per form type.
const (
	PrefixBrief        = "BRIEF"
	PrefixConsultation = "CONSULT"
)

const (
	suffixLength   = 6
	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewID returns {prefix}-{epoch millis}-{6 random base36 characters}.
func NewID(prefix string, now time.Time) (string, error) {
	suffix, err := randomBase36(suffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix), nil
}

// randomBase36 returns n uniformly random characters from [0-9A-Z].
func randomBase36(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random suffix: %w", err)
		}
		sb.WriteByte(base36Alphabet[idx.Int64()])
	}
	return sb.String(), nil
}
