// dh.go implements Diffie-Hellman key agreement in the fixed OTR group.
//
// Group: the RFC 3526 1536-bit MODP prime p with generator g = 2.
// Private exponents are at least 320 bits long. A peer's public value y
// is accepted only if 1 < y < p-1; 0, 1 and p-1 generate trivial
// subgroups and anything >= p is not a reduced residue.
package crypto

import (
	"math/big"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

var (
	dhModulus          = mustParseHex(constants.DHModulusHex)
	dhGenerator        = big.NewInt(constants.DHGenerator)
	dhModulusMinusOne  = new(big.Int).Sub(dhModulus, big.NewInt(1))
	dhMinimumPublicKey = big.NewInt(2)
)

func mustParseHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("crypto: invalid hex constant")
	}
	return v
}

// DHModulus returns a copy of the group modulus p.
func DHModulus() *big.Int {
	return new(big.Int).Set(dhModulus)
}

// DHGenerator returns a copy of the group generator g.
func DHGenerator() *big.Int {
	return new(big.Int).Set(dhGenerator)
}

// GenerateKeyAgreementKeyPair generates an ephemeral DH key pair in the
// fixed group. The private exponent has exactly DHPrivateKeyMinBits bits.
func (e *Engine) GenerateKeyAgreementKeyPair() (kp *KeyAgreementKeyPair, err error) {
	done := e.observe(OpGenerateKeyAgreementKeyPair)
	defer func() { done(err) }()

	if err := runRNGHealthCheck(e); err != nil {
		return nil, qerrors.NewCryptoError("GenerateKeyAgreementKeyPair", err)
	}

	kp, err = e.generateKeyAgreementKeyPair()
	if err != nil {
		return nil, err
	}
	if err := runPairwiseTestKeyAgreement(e, kp); err != nil {
		return nil, qerrors.NewCryptoError("GenerateKeyAgreementKeyPair", err)
	}
	return kp, nil
}

func (e *Engine) generateKeyAgreementKeyPair() (*KeyAgreementKeyPair, error) {
	buf := make([]byte, constants.DHPrivateKeyMinBits/8)
	defer Zeroize(buf)

	if err := readRandom(e.rand, "GenerateKeyAgreementKeyPair", buf); err != nil {
		return nil, err
	}
	buf[0] |= 0x80

	return e.keyAgreementKeyPair(new(big.Int).SetBytes(buf)), nil
}

// KeyAgreementKeyPairFromPrivate rebuilds a key pair from a stored private
// exponent x, which must satisfy 1 < x < p-1.
func (e *Engine) KeyAgreementKeyPairFromPrivate(x *big.Int) (*KeyAgreementKeyPair, error) {
	if x == nil {
		return nil, qerrors.NewUsageError("KeyAgreementKeyPairFromPrivate", qerrors.ErrNilKey)
	}
	if x.Cmp(dhMinimumPublicKey) < 0 || x.Cmp(dhModulusMinusOne) >= 0 {
		return nil, qerrors.NewCryptoError("KeyAgreementKeyPairFromPrivate", qerrors.ErrInvalidPrivateKey)
	}
	return e.keyAgreementKeyPair(new(big.Int).Set(x)), nil
}

func (e *Engine) keyAgreementKeyPair(x *big.Int) *KeyAgreementKeyPair {
	pub := &KeyAgreementPublicKey{y: e.provider.Exp(dhGenerator, x, dhModulus)}
	return &KeyAgreementKeyPair{
		Public:  pub,
		Private: &KeyAgreementPrivateKey{x: x, pub: pub},
	}
}

// DecodeKeyAgreementPublicKey builds a peer's DH public key from the
// unsigned big-endian magnitude of its MPI encoding.
func (e *Engine) DecodeKeyAgreementPublicKey(mpi []byte) (pub *KeyAgreementPublicKey, err error) {
	done := e.observe(OpDecodeKeyAgreementPublicKey)
	defer func() { done(err) }()

	if len(mpi) == 0 {
		return nil, qerrors.NewCryptoError("DecodeKeyAgreementPublicKey", qerrors.ErrInvalidPublicKey)
	}
	return decodeKeyAgreementPublicKey(new(big.Int).SetBytes(mpi))
}

// KeyAgreementPublicKeyFromInt builds a peer's DH public key from a value
// the wire layer has already decoded.
func (e *Engine) KeyAgreementPublicKeyFromInt(y *big.Int) (pub *KeyAgreementPublicKey, err error) {
	done := e.observe(OpDecodeKeyAgreementPublicKey)
	defer func() { done(err) }()

	if y == nil {
		return nil, qerrors.NewUsageError("KeyAgreementPublicKeyFromInt", qerrors.ErrNilKey)
	}
	return decodeKeyAgreementPublicKey(new(big.Int).Set(y))
}

func decodeKeyAgreementPublicKey(y *big.Int) (*KeyAgreementPublicKey, error) {
	if err := checkDHPublic(y); err != nil {
		return nil, qerrors.NewCryptoError("DecodeKeyAgreementPublicKey", err)
	}
	return &KeyAgreementPublicKey{y: y}, nil
}

func checkDHPublic(y *big.Int) error {
	if y.Cmp(dhMinimumPublicKey) < 0 || y.Cmp(dhModulusMinusOne) >= 0 {
		return qerrors.ErrInvalidPublicKey
	}
	return nil
}

// SharedSecret performs DH key agreement and returns peer^x mod p as a
// non-negative integer.
func (e *Engine) SharedSecret(priv *KeyAgreementPrivateKey, peer *KeyAgreementPublicKey) (secret *big.Int, err error) {
	done := e.observe(OpSharedSecret)
	defer func() { done(err) }()

	if !priv.usable() || !peer.usable() {
		return nil, qerrors.NewUsageError("SharedSecret", qerrors.ErrNilKey)
	}
	if err := checkDHPublic(peer.y); err != nil {
		return nil, qerrors.NewCryptoError("SharedSecret", err)
	}
	if priv.x.Sign() <= 0 || priv.x.Cmp(dhModulusMinusOne) >= 0 {
		return nil, qerrors.NewCryptoError("SharedSecret", qerrors.ErrInvalidPrivateKey)
	}

	return e.provider.Exp(peer.y, priv.x, dhModulus), nil
}
