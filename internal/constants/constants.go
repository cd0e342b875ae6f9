// Package constants defines the fixed protocol parameters of the OTR
// cryptographic primitive layer.
//
// None of these values are configurable. Peers derive identical keys,
// MACs and fingerprints only if both sides use exactly these parameters.
package constants

// Library identification
const (
	// LibraryName is used in log fields and metric namespaces
	LibraryName = "otrcrypto"

	// ProtocolVersion is the OTR protocol version these primitives serve
	ProtocolVersion uint16 = 0x0003
)

// Diffie-Hellman group (RFC 3526, 1536-bit MODP group)
const (
	// DHModulusHex is the 1536-bit MODP prime used for all key agreement
	DHModulusHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
		"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
		"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
		"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
		"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
		"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
		"670C354E4ABC9804F1746C08CA237327FFFFFFFFFFFFFFFF"

	// DHModulusBits is the bit length of the DH modulus
	DHModulusBits = 1536

	// DHGenerator is the group generator
	DHGenerator = 2

	// DHPrivateKeyMinBits is the minimum bit length of a DH private exponent
	DHPrivateKeyMinBits = 320
)

// DSA parameters
const (
	// DSAKeyBits is the DSA modulus size (L)
	DSAKeyBits = 1024

	// DSASubgroupBits is the DSA subgroup order size (N)
	DSASubgroupBits = 160

	// DSARawDataSize is the input length DSA signs without reduction.
	// Signing uses no digest, so other lengths are reduced modulo q.
	DSARawDataSize = 20

	// DSASignatureSize is the P1363 r||s length for the fixed key size
	DSASignatureSize = 2 * DSASubgroupBits / 8
)

// Symmetric cipher parameters (AES-CTR, no padding)
const (
	// AESBlockSize is the AES block size in bytes
	AESBlockSize = 16

	// CounterSize is the length of the CTR counter block in bytes
	CounterSize = AESBlockSize

	// CounterTopHalfSize is the length of the sender counter in a data message
	CounterTopHalfSize = 8

	// AESKeySize is the AES-128 key length OTR derives for data messages
	AESKeySize = 16
)

// Digest sizes
const (
	// SHA256Size is the SHA-256 digest length in bytes
	SHA256Size = 32

	// SHA1Size is the SHA-1 digest length in bytes
	SHA1Size = 20

	// MAC160Size is the length of a SHA-256 HMAC truncated to 160 bits
	MAC160Size = 20

	// FingerprintSize is the length of a raw public-key fingerprint
	FingerprintSize = SHA1Size
)

// Wire encoding
const (
	// PublicKeyTypeDSA is the 2-byte key type prefix of a serialized DSA key
	PublicKeyTypeDSA uint16 = 0x0000

	// PublicKeyTypeSize is the length of the key type prefix
	PublicKeyTypeSize = 2

	// MaxMPISize bounds the magnitude length accepted by the MPI decoder
	MaxMPISize = 1 << 12
)

// HashAlgorithm identifies one of the two digest families the protocol uses.
type HashAlgorithm uint8

const (
	// HashSHA1 is SHA-1 (FIPS 180-4)
	HashSHA1 HashAlgorithm = 0x01

	// HashSHA256 is SHA-256 (FIPS 180-4)
	HashSHA256 HashAlgorithm = 0x02
)

// String returns a human-readable name for the hash algorithm
func (h HashAlgorithm) String() string {
	switch h {
	case HashSHA1:
		return "SHA-1"
	case HashSHA256:
		return "SHA-256"
	default:
		return "Unknown"
	}
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm.
func (h HashAlgorithm) Size() int {
	switch h {
	case HashSHA1:
		return SHA1Size
	case HashSHA256:
		return SHA256Size
	default:
		return 0
	}
}

// IsSupported returns true if the hash algorithm is one of the fixed families
func (h HashAlgorithm) IsSupported() bool {
	return h == HashSHA1 || h == HashSHA256
}
