// dsa.go implements DSA identity keys and raw-input signatures.
//
// DSA signs a fixed 20-byte value with no digest step. Input of exactly
// 20 bytes is signed as is. Any other input is read as an unsigned
// integer, reduced modulo q and written back as 20 big-endian bytes.
// This reduction is part of the wire protocol and must not be replaced
// with a hash.
//
// Signatures use the P1363 layout r || s, each half padded to the byte
// length of q, so the encoded size never depends on the values.
package crypto

import (
	"crypto/dsa" //nolint:staticcheck // DSA is mandated by the protocol
	"math/big"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// GenerateSigningKeyPair generates a long-term DSA key pair with fresh
// L1024N160 domain parameters. Parameter generation is slow; callers
// should generate identity keys once and persist them.
func (e *Engine) GenerateSigningKeyPair() (kp *SigningKeyPair, err error) {
	done := e.observe(OpGenerateSigningKeyPair)
	defer func() { done(err) }()

	if err := runRNGHealthCheck(e); err != nil {
		return nil, qerrors.NewCryptoError("GenerateSigningKeyPair", err)
	}

	priv, err := e.provider.GenerateDSAKey(e.rand, dsa.L1024N160)
	if err != nil {
		return nil, qerrors.NewCryptoError("GenerateSigningKeyPair", qerrors.ErrKeyGenerationFailed)
	}

	kp = newSigningKeyPair(priv)
	if err := runPairwiseTestSigning(e, kp); err != nil {
		return nil, qerrors.NewCryptoError("GenerateSigningKeyPair", err)
	}
	return kp, nil
}

// Sign signs data with priv and returns the P1363 encoded signature.
func (e *Engine) Sign(data []byte, priv *SigningPrivateKey) (sig []byte, err error) {
	done := e.observe(OpSign)
	defer func() { done(err) }()

	if !priv.usable() {
		return nil, qerrors.NewUsageError("Sign", qerrors.ErrNilKey)
	}

	digest, err := rawSigningData(priv.key.Q, data)
	if err != nil {
		return nil, qerrors.NewCryptoError("Sign", err)
	}

	r, s, err := e.provider.SignDSA(e.rand, &priv.key, digest)
	if err != nil {
		return nil, qerrors.NewCryptoError("Sign", qerrors.ErrSigningFailed)
	}

	return encodeSignature(priv.key.Q, r, s)
}

// Verify reports whether sig is a valid signature of data under pub.
//
// A signature that does not verify returns (false, nil). Only a signature
// of the wrong length, or a key that cannot be used, returns an error.
func (e *Engine) Verify(data []byte, pub *SigningPublicKey, sig []byte) (ok bool, err error) {
	done := e.observe(OpVerify)
	defer func() { done(err) }()

	if !pub.usable() {
		return false, qerrors.NewUsageError("Verify", qerrors.ErrNilKey)
	}
	if err := validateDSAPublic(&pub.key); err != nil {
		return false, qerrors.NewCryptoError("Verify", err)
	}

	qLen := subgroupByteLen(pub.key.Q)
	if len(sig) != 2*qLen {
		return false, qerrors.NewCryptoError("Verify", qerrors.ErrInvalidSignature)
	}

	digest, err := rawSigningData(pub.key.Q, data)
	if err != nil {
		return false, qerrors.NewCryptoError("Verify", err)
	}

	r := new(big.Int).SetBytes(sig[:qLen])
	s := new(big.Int).SetBytes(sig[qLen:])
	return e.provider.VerifyDSA(&pub.key, digest, r, s), nil
}

// rawSigningData applies the 20-byte input rule.
func rawSigningData(q *big.Int, data []byte) ([]byte, error) {
	if len(data) == constants.DSARawDataSize {
		return data, nil
	}
	return bytesModQ(q, data)
}

// bytesModQ returns int(data) mod q as a 20-byte big-endian value.
func bytesModQ(q *big.Int, data []byte) ([]byte, error) {
	v := new(big.Int).SetBytes(data)
	v.Mod(v, q)
	if v.BitLen() > 8*constants.DSARawDataSize {
		return nil, qerrors.ErrInvalidParameters
	}
	return v.FillBytes(make([]byte, constants.DSARawDataSize)), nil
}

func subgroupByteLen(q *big.Int) int {
	return (q.BitLen() + 7) / 8
}

func encodeSignature(q, r, s *big.Int) ([]byte, error) {
	qLen := subgroupByteLen(q)
	if r.BitLen() > 8*qLen || s.BitLen() > 8*qLen {
		return nil, qerrors.NewCryptoError("Sign", qerrors.ErrSigningFailed)
	}
	sig := make([]byte, 2*qLen)
	r.FillBytes(sig[:qLen])
	s.FillBytes(sig[qLen:])
	return sig, nil
}
