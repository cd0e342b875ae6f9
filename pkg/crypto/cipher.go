package crypto

import (
	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// Encrypt enciphers plaintext with AES-CTR under key and the 16-byte
// counter block. A nil or empty counter means the all-zero block.
//
// The output has exactly the length of the input. The caller must never
// reuse a (key, counter) pair for two different plaintexts.
func (e *Engine) Encrypt(key, counter, plaintext []byte) (ciphertext []byte, err error) {
	done := e.observe(OpEncrypt)
	defer func() { done(err) }()
	return e.ctr("Encrypt", key, counter, plaintext)
}

// Decrypt reverses Encrypt. AES-CTR is its own inverse.
func (e *Engine) Decrypt(key, counter, ciphertext []byte) (plaintext []byte, err error) {
	done := e.observe(OpDecrypt)
	defer func() { done(err) }()
	return e.ctr("Decrypt", key, counter, ciphertext)
}

func (e *Engine) ctr(op string, key, counter, in []byte) ([]byte, error) {
	if len(counter) == 0 {
		counter = make([]byte, constants.CounterSize)
	}
	if len(counter) != constants.CounterSize {
		return nil, qerrors.NewCryptoError(op, qerrors.ErrInvalidCounter)
	}

	stream, err := e.provider.Stream(key, counter)
	if err != nil {
		return nil, qerrors.NewCryptoError(op, err)
	}

	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}

// CounterFromTopHalf builds the 16-byte counter block of a data message:
// the sender's 8-byte counter followed by eight zero bytes.
func CounterFromTopHalf(top [constants.CounterTopHalfSize]byte) []byte {
	ctr := make([]byte, constants.CounterSize)
	copy(ctr, top[:])
	return ctr
}
