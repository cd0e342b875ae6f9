package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
	"github.com/pzverkov/otrcrypto/pkg/wire"
)

// Serializer produces the canonical wire encoding of a public key.
type Serializer interface {
	MarshalPublicKey(pub PublicKey) ([]byte, error)
}

// WireSerializer encodes keys in the OTR wire format: DSA keys as a
// type-prefixed MPI sequence, DH keys as a single MPI.
type WireSerializer struct{}

// MarshalPublicKey implements Serializer.
func (WireSerializer) MarshalPublicKey(pub PublicKey) ([]byte, error) {
	switch k := pub.(type) {
	case *SigningPublicKey:
		return wire.MarshalDSAPublicKey(&k.key)
	case *KeyAgreementPublicKey:
		return wire.MarshalMPI(k.y)
	default:
		return nil, qerrors.ErrWrongKeyType
	}
}

// Fingerprint returns the 20-byte SHA-1 fingerprint of pub. For DSA keys
// the 2-byte key type prefix is dropped before hashing.
func (e *Engine) Fingerprint(pub PublicKey) (fp []byte, err error) {
	done := e.observe(OpFingerprint)
	defer func() { done(err) }()

	if !usablePublicKey(pub) {
		return nil, qerrors.NewUsageError("Fingerprint", qerrors.ErrNilKey)
	}

	encoded, err := e.serializer.MarshalPublicKey(pub)
	if err != nil {
		return nil, qerrors.NewCryptoError("Fingerprint", fmt.Errorf("%w: %w", qerrors.ErrSerializationFailed, err))
	}

	if pub.Kind() == KindSigning {
		if len(encoded) < constants.PublicKeyTypeSize {
			return nil, qerrors.NewCryptoError("Fingerprint", qerrors.ErrSerializationFailed)
		}
		encoded = encoded[constants.PublicKeyTypeSize:]
	}

	return e.digest("Fingerprint", constants.HashSHA1, encoded), nil
}

// FingerprintHex returns Fingerprint as lowercase hex without separators.
func (e *Engine) FingerprintHex(pub PublicKey) (string, error) {
	fp, err := e.Fingerprint(pub)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(fp), nil
}

func usablePublicKey(pub PublicKey) bool {
	switch k := pub.(type) {
	case *SigningPublicKey:
		return k.usable()
	case *KeyAgreementPublicKey:
		return k.usable()
	default:
		return false
	}
}
