package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/dsa" //nolint:staticcheck // DSA is mandated by the protocol
	"crypto/sha1" //nolint:gosec // SHA-1 is mandated by the protocol
	"crypto/sha256"
	"hash"
	"io"
	"math/big"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// Provider is the cryptographic backend the Engine delegates to.
//
// Implementations must be safe for concurrent use. A method that cannot
// serve an algorithm at all signals it the documented way (nil hash);
// the Engine turns that into a fatal EnvironmentError.
type Provider interface {
	// Hash returns a fresh hash.Hash for alg, or nil if alg is unavailable.
	Hash(alg constants.HashAlgorithm) hash.Hash

	// Stream returns an AES-CTR keystream for key and the 16-byte iv.
	// Invalid key or iv sizes are reported as errors.
	Stream(key, iv []byte) (cipher.Stream, error)

	// Exp returns base^exp mod m.
	Exp(base, exp, m *big.Int) *big.Int

	// GenerateDSAKey generates fresh domain parameters and a key pair.
	GenerateDSAKey(rand io.Reader, sizes dsa.ParameterSizes) (*dsa.PrivateKey, error)

	// SignDSA signs digest without hashing it.
	SignDSA(rand io.Reader, priv *dsa.PrivateKey, digest []byte) (r, s *big.Int, err error)

	// VerifyDSA verifies (r, s) over digest without hashing it.
	VerifyDSA(pub *dsa.PublicKey, digest []byte, r, s *big.Int) bool
}

// StdProvider implements Provider on the Go standard library.
type StdProvider struct{}

// Hash implements Provider.
func (StdProvider) Hash(alg constants.HashAlgorithm) hash.Hash {
	switch alg {
	case constants.HashSHA1:
		return sha1.New() //nolint:gosec
	case constants.HashSHA256:
		return sha256.New()
	default:
		return nil
	}
}

// Stream implements Provider.
func (StdProvider) Stream(key, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, qerrors.ErrInvalidKeySize
	}
	if len(iv) != block.BlockSize() {
		return nil, qerrors.ErrInvalidCounter
	}
	return cipher.NewCTR(block, iv), nil
}

// Exp implements Provider.
func (StdProvider) Exp(base, exp, m *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, m)
}

// GenerateDSAKey implements Provider.
func (StdProvider) GenerateDSAKey(rand io.Reader, sizes dsa.ParameterSizes) (*dsa.PrivateKey, error) {
	priv := new(dsa.PrivateKey)
	if err := dsa.GenerateParameters(&priv.Parameters, rand, sizes); err != nil {
		return nil, err
	}
	if err := dsa.GenerateKey(priv, rand); err != nil {
		return nil, err
	}
	return priv, nil
}

// SignDSA implements Provider.
func (StdProvider) SignDSA(rand io.Reader, priv *dsa.PrivateKey, digest []byte) (*big.Int, *big.Int, error) {
	return dsa.Sign(rand, priv, digest)
}

// VerifyDSA implements Provider.
func (StdProvider) VerifyDSA(pub *dsa.PublicKey, digest []byte, r, s *big.Int) bool {
	return dsa.Verify(pub, digest, r, s)
}
