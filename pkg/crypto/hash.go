package crypto

import (
	"crypto/hmac"
	"hash"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// SHA256 returns the 32-byte SHA-256 digest of data.
func (e *Engine) SHA256(data []byte) []byte {
	done := e.observe(OpSHA256)
	sum := e.digest("SHA256", constants.HashSHA256, data)
	done(nil)
	return sum
}

// SHA1 returns the 20-byte SHA-1 digest of data.
func (e *Engine) SHA1(data []byte) []byte {
	done := e.observe(OpSHA1)
	sum := e.digest("SHA1", constants.HashSHA1, data)
	done(nil)
	return sum
}

// HMACSHA256 returns HMAC-SHA256(key, data). If truncate > 0 only the
// first truncate bytes are returned.
//
// An empty key is rejected with a CryptoError; a truncate longer than the
// digest is a UsageError.
func (e *Engine) HMACSHA256(data, key []byte, truncate int) (mac []byte, err error) {
	done := e.observe(OpHMACSHA256)
	defer func() { done(err) }()
	return e.mac("HMACSHA256", constants.HashSHA256, data, key, truncate)
}

// HMACSHA1 returns HMAC-SHA1(key, data), truncated like HMACSHA256.
func (e *Engine) HMACSHA1(data, key []byte, truncate int) (mac []byte, err error) {
	done := e.observe(OpHMACSHA1)
	defer func() { done(err) }()
	return e.mac("HMACSHA1", constants.HashSHA1, data, key, truncate)
}

// HMACSHA256Truncated160 returns the first 160 bits of HMAC-SHA256(key, data).
func (e *Engine) HMACSHA256Truncated160(data, key []byte) ([]byte, error) {
	return e.HMACSHA256(data, key, constants.MAC160Size)
}

func (e *Engine) newHash(op string, alg constants.HashAlgorithm) hash.Hash {
	h := e.provider.Hash(alg)
	if h == nil {
		qerrors.Fatal(op, qerrors.ErrAlgorithmUnavailable)
	}
	return h
}

func (e *Engine) digest(op string, alg constants.HashAlgorithm, data []byte) []byte {
	h := e.newHash(op, alg)
	h.Write(data)
	return h.Sum(nil)
}

func (e *Engine) mac(op string, alg constants.HashAlgorithm, data, key []byte, truncate int) ([]byte, error) {
	// Resolve the hash first so a missing algorithm is fatal before any input check.
	e.newHash(op, alg)

	if len(key) == 0 {
		return nil, qerrors.NewCryptoError(op, qerrors.ErrInvalidKey)
	}
	if truncate > alg.Size() {
		return nil, qerrors.NewUsageError(op, qerrors.ErrInvalidTruncation)
	}

	m := hmac.New(func() hash.Hash { return e.newHash(op, alg) }, key)
	m.Write(data)
	sum := m.Sum(nil)

	if truncate > 0 {
		return sum[:truncate:truncate], nil
	}
	return sum, nil
}
