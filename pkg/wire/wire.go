// Package wire implements the OTR byte encodings the crypto layer needs
// for hashing and fingerprinting public keys.
//
// Encodings:
//
//	SHORT  2-byte big-endian unsigned
//	DATA   4-byte big-endian length || bytes
//	MPI    4-byte big-endian length || minimal big-endian magnitude
//	DSA    SHORT key type (0x0000) || MPI p || MPI q || MPI g || MPI y
//
// The session layer owns full message framing; this package only covers
// the values that feed digests and fingerprints.
package wire

import (
	"crypto/dsa" //nolint:staticcheck // DSA is mandated by the protocol
	"errors"
	"math/big"

	"golang.org/x/crypto/cryptobyte"

	"github.com/pzverkov/otrcrypto/internal/constants"
)

var (
	// ErrMalformed indicates truncated, oversized or trailing input
	ErrMalformed = errors.New("wire: malformed encoding")

	// ErrUnknownKeyType indicates a public key type other than DSA
	ErrUnknownKeyType = errors.New("wire: unknown public key type")

	// ErrNegative indicates an attempt to encode a negative MPI
	ErrNegative = errors.New("wire: negative MPI")
)

// AppendMPI appends v as an MPI. A negative or nil value sets an error on b.
func AppendMPI(b *cryptobyte.Builder, v *big.Int) {
	if v == nil || v.Sign() < 0 {
		b.SetError(ErrNegative)
		return
	}
	b.AddUint32LengthPrefixed(func(child *cryptobyte.Builder) {
		child.AddBytes(v.Bytes())
	})
}

// MarshalMPI returns the MPI encoding of v.
func MarshalMPI(v *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	AppendMPI(&b, v)
	return b.Bytes()
}

// ReadMPI reads one MPI from s.
func ReadMPI(s *cryptobyte.String) (*big.Int, error) {
	var n uint32
	if !s.ReadUint32(&n) || n > constants.MaxMPISize {
		return nil, ErrMalformed
	}
	var magnitude []byte
	if !s.ReadBytes(&magnitude, int(n)) {
		return nil, ErrMalformed
	}
	return new(big.Int).SetBytes(magnitude), nil
}

// ParseMPI decodes data that must hold exactly one MPI.
func ParseMPI(data []byte) (*big.Int, error) {
	s := cryptobyte.String(data)
	v, err := ReadMPI(&s)
	if err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, ErrMalformed
	}
	return v, nil
}

// AppendDATA appends d as a DATA field.
func AppendDATA(b *cryptobyte.Builder, d []byte) {
	b.AddUint32LengthPrefixed(func(child *cryptobyte.Builder) {
		child.AddBytes(d)
	})
}

// ReadDATA reads one DATA field from s. The result aliases s.
func ReadDATA(s *cryptobyte.String) ([]byte, error) {
	var n uint32
	if !s.ReadUint32(&n) || uint64(n) > uint64(len(*s)) {
		return nil, ErrMalformed
	}
	var d []byte
	if !s.ReadBytes(&d, int(n)) {
		return nil, ErrMalformed
	}
	return d, nil
}

// MarshalDSAPublicKey returns the OTR encoding of a DSA public key,
// including the 2-byte key type prefix.
func MarshalDSAPublicKey(pub *dsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, ErrMalformed
	}
	var b cryptobyte.Builder
	b.AddUint16(constants.PublicKeyTypeDSA)
	AppendMPI(&b, pub.P)
	AppendMPI(&b, pub.Q)
	AppendMPI(&b, pub.G)
	AppendMPI(&b, pub.Y)
	return b.Bytes()
}

// ReadDSAPublicKey reads a type-prefixed DSA public key from s.
func ReadDSAPublicKey(s *cryptobyte.String) (*dsa.PublicKey, error) {
	var keyType uint16
	if !s.ReadUint16(&keyType) {
		return nil, ErrMalformed
	}
	if keyType != constants.PublicKeyTypeDSA {
		return nil, ErrUnknownKeyType
	}

	values := make([]*big.Int, 4)
	for i := range values {
		v, err := ReadMPI(s)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: values[0], Q: values[1], G: values[2]},
		Y:          values[3],
	}, nil
}

// ParseDSAPublicKey decodes data that must hold exactly one DSA public key.
func ParseDSAPublicKey(data []byte) (*dsa.PublicKey, error) {
	s := cryptobyte.String(data)
	pub, err := ReadDSAPublicKey(&s)
	if err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, ErrMalformed
	}
	return pub, nil
}
