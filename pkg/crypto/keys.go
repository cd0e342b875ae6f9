package crypto

import (
	"crypto/dsa" //nolint:staticcheck // DSA is mandated by the protocol
	"math/big"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// KeyKind tags the two key families the protocol uses.
type KeyKind int

const (
	// KindSigning is a long-term DSA identity key
	KindSigning KeyKind = iota + 1

	// KindKeyAgreement is an ephemeral Diffie-Hellman key
	KindKeyAgreement
)

// String returns a human-readable name for the key kind
func (k KeyKind) String() string {
	switch k {
	case KindSigning:
		return "DSA"
	case KindKeyAgreement:
		return "DH"
	default:
		return "Unknown"
	}
}

// PublicKey is implemented by *SigningPublicKey and *KeyAgreementPublicKey.
// The set is closed.
type PublicKey interface {
	Kind() KeyKind
	publicKey()
}

// KeyPair is implemented by *SigningKeyPair and *KeyAgreementKeyPair.
type KeyPair interface {
	Kind() KeyKind
	keyPair()
}

// --- Signing keys ---

// SigningPublicKey is a DSA public key.
type SigningPublicKey struct {
	key dsa.PublicKey
}

// SigningPrivateKey is a DSA private key.
type SigningPrivateKey struct {
	key dsa.PrivateKey
}

// SigningKeyPair is a long-term DSA identity key pair.
type SigningKeyPair struct {
	Public  *SigningPublicKey
	Private *SigningPrivateKey
}

// NewSigningPublicKey builds a DSA public key from decoded wire values.
// It fails with a CryptoError if the values cannot form a usable key.
func NewSigningPublicKey(p, q, g, y *big.Int) (*SigningPublicKey, error) {
	pub := dsa.PublicKey{
		Parameters: dsa.Parameters{P: copyInt(p), Q: copyInt(q), G: copyInt(g)},
		Y:          copyInt(y),
	}
	if err := validateDSAPublic(&pub); err != nil {
		return nil, qerrors.NewCryptoError("NewSigningPublicKey", err)
	}
	return &SigningPublicKey{key: pub}, nil
}

// NewSigningKeyPair wraps an existing DSA private key, for example one
// loaded from the account store.
func NewSigningKeyPair(priv *dsa.PrivateKey) (*SigningKeyPair, error) {
	if priv == nil {
		return nil, qerrors.NewUsageError("NewSigningKeyPair", qerrors.ErrNilKey)
	}
	if err := validateDSAPrivate(priv); err != nil {
		return nil, qerrors.NewCryptoError("NewSigningKeyPair", err)
	}
	return newSigningKeyPair(priv), nil
}

func newSigningKeyPair(priv *dsa.PrivateKey) *SigningKeyPair {
	sk := &SigningPrivateKey{key: dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{
				P: copyInt(priv.P),
				Q: copyInt(priv.Q),
				G: copyInt(priv.G),
			},
			Y: copyInt(priv.Y),
		},
		X: copyInt(priv.X),
	}}
	return &SigningKeyPair{Public: sk.Public(), Private: sk}
}

// Kind implements PublicKey.
func (k *SigningPublicKey) Kind() KeyKind { return KindSigning }

func (k *SigningPublicKey) publicKey() {}

// DSA returns a copy of the underlying DSA public key.
func (k *SigningPublicKey) DSA() *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: copyInt(k.key.P), Q: copyInt(k.key.Q), G: copyInt(k.key.G)},
		Y:          copyInt(k.key.Y),
	}
}

// Q returns a copy of the subgroup order.
func (k *SigningPublicKey) Q() *big.Int {
	return copyInt(k.key.Q)
}

// Equal reports whether both keys hold the same parameters and public value.
func (k *SigningPublicKey) Equal(other *SigningPublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return cmpInt(k.key.P, other.key.P) && cmpInt(k.key.Q, other.key.Q) &&
		cmpInt(k.key.G, other.key.G) && cmpInt(k.key.Y, other.key.Y)
}

func (k *SigningPublicKey) usable() bool {
	return k != nil && k.key.P != nil && k.key.Q != nil && k.key.G != nil && k.key.Y != nil
}

// Public returns the matching public key.
func (k *SigningPrivateKey) Public() *SigningPublicKey {
	return &SigningPublicKey{key: dsa.PublicKey{
		Parameters: dsa.Parameters{P: copyInt(k.key.P), Q: copyInt(k.key.Q), G: copyInt(k.key.G)},
		Y:          copyInt(k.key.Y),
	}}
}

func (k *SigningPrivateKey) usable() bool {
	return k != nil && k.key.X != nil && k.key.Q != nil && k.key.P != nil && k.key.G != nil
}

// Kind implements KeyPair.
func (kp *SigningKeyPair) Kind() KeyKind { return KindSigning }

func (kp *SigningKeyPair) keyPair() {}

// Zeroize clears the private value and drops the key references.
func (kp *SigningKeyPair) Zeroize() {
	if kp.Private != nil {
		zeroizeInt(kp.Private.key.X)
	}
	kp.Private = nil
	kp.Public = nil
}

// --- Key agreement keys ---

// KeyAgreementPublicKey is a DH public value in the fixed group.
type KeyAgreementPublicKey struct {
	y *big.Int
}

// KeyAgreementPrivateKey is a DH private exponent in the fixed group.
type KeyAgreementPrivateKey struct {
	x   *big.Int
	pub *KeyAgreementPublicKey
}

// KeyAgreementKeyPair is an ephemeral DH key pair.
type KeyAgreementKeyPair struct {
	Public  *KeyAgreementPublicKey
	Private *KeyAgreementPrivateKey
}

// Kind implements PublicKey.
func (k *KeyAgreementPublicKey) Kind() KeyKind { return KindKeyAgreement }

func (k *KeyAgreementPublicKey) publicKey() {}

// Y returns a copy of the public value g^x mod p.
func (k *KeyAgreementPublicKey) Y() *big.Int {
	return copyInt(k.y)
}

// Equal reports whether both keys hold the same public value.
func (k *KeyAgreementPublicKey) Equal(other *KeyAgreementPublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return cmpInt(k.y, other.y)
}

func (k *KeyAgreementPublicKey) usable() bool {
	return k != nil && k.y != nil
}

// Public returns the matching public key.
func (k *KeyAgreementPrivateKey) Public() *KeyAgreementPublicKey {
	return k.pub
}

func (k *KeyAgreementPrivateKey) usable() bool {
	return k != nil && k.x != nil
}

// Kind implements KeyPair.
func (kp *KeyAgreementKeyPair) Kind() KeyKind { return KindKeyAgreement }

func (kp *KeyAgreementKeyPair) keyPair() {}

// Zeroize clears the private value and drops the key references.
func (kp *KeyAgreementKeyPair) Zeroize() {
	if kp.Private != nil {
		zeroizeInt(kp.Private.x)
	}
	kp.Private = nil
	kp.Public = nil
}

// --- helpers ---

func validateDSAPublic(pub *dsa.PublicKey) error {
	for _, v := range []*big.Int{pub.P, pub.Q, pub.G, pub.Y} {
		if v == nil || v.Sign() <= 0 {
			return qerrors.ErrInvalidParameters
		}
	}
	// Only L1024N160 keys are usable; signing reduces input into 20 bytes.
	if pub.P.BitLen() != constants.DSAKeyBits || pub.Q.BitLen() != constants.DSASubgroupBits {
		return qerrors.ErrInvalidParameters
	}
	if pub.Y.Cmp(pub.P) >= 0 || pub.G.Cmp(pub.P) >= 0 {
		return qerrors.ErrInvalidPublicKey
	}
	return nil
}

func validateDSAPrivate(priv *dsa.PrivateKey) error {
	if err := validateDSAPublic(&priv.PublicKey); err != nil {
		return err
	}
	if priv.X == nil || priv.X.Sign() <= 0 || priv.X.Cmp(priv.Q) >= 0 {
		return qerrors.ErrInvalidPrivateKey
	}
	return nil
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func cmpInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
