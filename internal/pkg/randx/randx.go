/*
Package randx provides identifier and randomness helpers.

User identifiers are time-based and strictly increasing within the process. Avatar seeds,
pool picks and delay jitter come from crypto/rand; other identifiers are UUID v4.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// Base36Chars is the alphabet used for avatar seeds.
	Base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// AvatarSeedLength is the length of a generated avatar seed.
	AvatarSeedLength = 6

	// UserIDPrefix prefixes every generated user identifier.
	UserIDPrefix = "u"
)

// lastUserStamp holds the last nanosecond stamp handed out by UserID.
var lastUserStamp atomic.Int64

// UserID returns a time-based user identifier ("u" + Unix nanoseconds).
// Stamps are strictly increasing, so two calls never return the same value
// even when the clock does not advance between them.
func UserID() string {
	for {
		now := time.Now().UnixNano()
		last := lastUserStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastUserStamp.CompareAndSwap(last, now) {
			return UserIDPrefix + strconv.FormatInt(now, 10)
		}
	}
}

// NewID generates a UUID v4 string for posts, sessions and messages.
func NewID() string {
	return uuid.New().String()
}

// Intn returns a uniform random integer in [0, n) from crypto/rand.
// n must be positive.
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("randx: invalid bound %d", n)
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}

	return int(num.Int64()), nil
}

// Pick returns a uniformly chosen element of pool.
// If the random source fails, the first element is returned. pool must not be empty.
func Pick[T any](pool []T) T {
	i, err := Intn(len(pool))
	if err != nil {
		return pool[0]
	}
	return pool[i]
}

// AvatarSeed generates a random base36 string used only for deterministic avatar rendering.
func AvatarSeed() (string, error) {
	result := make([]byte, AvatarSeedLength)

	for i := range AvatarSeedLength {
		n, err := Intn(len(Base36Chars))
		if err != nil {
			return "", fmt.Errorf("failed to generate avatar seed: %w", err)
		}
		result[i] = Base36Chars[n]
	}

	return string(result), nil
}

// Duration returns a uniform random duration in [lo, hi].
// If hi <= lo, lo is returned.
func Duration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)+1))
	if err != nil {
		return lo
	}

	return lo + time.Duration(n.Int64())
}
