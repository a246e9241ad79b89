package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Length of an issued verification code.
const Length = 6

// TTL is how long an issued code stays valid.
const TTL = 10 * time.Minute

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Issue generates an opaque lowercase alphanumeric verification code and
// its expiry (now + TTL). The same issuer serves the signup-verification
// and password-reset flows.
func Issue() (string, time.Time, error) {
	b := make([]byte, Length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("generate code: %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), time.Now().Add(TTL), nil
}
