package battle

import (
	"crypto/rand"
	"math/big"
)

// Source produces random ints for pool draws. It exists so tests can pin
// draws deterministically.
type Source interface {
	// Intn returns a uniformly distributed int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: all values produced are uniformly distributed in [0, n) for
// any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "battle: Intn called with n <= 0" if n <= 0.
// Panics with "battle: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("battle: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("battle: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// DrawWithoutReplacement removes one uniformly chosen item from pool.
//
// Precondition: src must be non-nil.
// Postcondition: For a non-empty pool, returns (item, remaining, true)
// where remaining preserves the order of the other items and the input pool
// is untouched. For an empty pool, returns ("", nil, false).
func DrawWithoutReplacement(pool []string, src Source) (string, []string, bool) {
	if len(pool) == 0 {
		return "", nil, false
	}

	i := src.Intn(len(pool))
	item := pool[i]

	remaining := make([]string, 0, len(pool)-1)
	remaining = append(remaining, pool[:i]...)
	remaining = append(remaining, pool[i+1:]...)

	return item, remaining, true
}
