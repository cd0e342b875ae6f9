package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// Reader is the entropy source engines use unless WithRandom overrides it.
var Reader io.Reader = rand.Reader

// RandomBytes returns n bytes from the engine's entropy source. Protocol
// layers draw instance tags, AKE keys and nonces from here so that a test
// engine built WithRandom stays deterministic end to end.
func (e *Engine) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := readRandom(e.rand, "RandomBytes", b); err != nil {
		return nil, err
	}
	return b, nil
}

// SecureRandom fills b from Reader.
func SecureRandom(b []byte) error {
	return readRandom(Reader, "SecureRandom", b)
}

// SecureRandomBytes returns n bytes from Reader.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

func readRandom(r io.Reader, op string, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return qerrors.NewCryptoError(op, fmt.Errorf("%w: %w", qerrors.ErrEntropy, err))
	}
	return nil
}

// ConstantTimeCompare reports whether a and b are equal without leaking
// where they differ. Use it for MAC checks.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites b with zeros. Copies made by the runtime are not
// reached.
func Zeroize(b []byte) {
	clear(b)
}

// zeroizeInt clears the words backing v and sets it to zero.
func zeroizeInt(v *big.Int) {
	if v == nil {
		return
	}
	clear(v.Bits())
	v.SetInt64(0)
}
