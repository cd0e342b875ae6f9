// Package crypto implements the cryptographic primitive layer of the OTR
// messaging protocol.
//
// Algorithm choices are fixed:
//
//   - Signing: DSA with 1024-bit p and 160-bit q, raw 20-byte input, P1363 r||s
//   - Key agreement: Diffie-Hellman in the RFC 3526 1536-bit MODP group
//   - Cipher: AES in counter mode, no padding
//   - Hash and MAC: SHA-1, SHA-256, HMAC-SHA1, HMAC-SHA256
//   - Fingerprint: SHA-1 over the serialized public key
//
// An Engine carries only immutable configuration. It never retains key
// material, so one Engine can serve any number of sessions concurrently.
//
// Errors come in three tiers. Malformed peer input yields *errors.CryptoError.
// Caller defects such as nil keys yield *errors.UsageError. A backend that
// lacks a required algorithm panics with *errors.EnvironmentError.
package crypto

import (
	"io"
)

// Operation names reported to the Observer.
const (
	OpGenerateSigningKeyPair      = "generate_signing_key_pair"
	OpGenerateKeyAgreementKeyPair = "generate_key_agreement_key_pair"
	OpDecodeKeyAgreementPublicKey = "decode_key_agreement_public_key"
	OpSHA256                      = "sha256"
	OpSHA1                        = "sha1"
	OpHMACSHA256                  = "hmac_sha256"
	OpHMACSHA1                    = "hmac_sha1"
	OpEncrypt                     = "encrypt"
	OpDecrypt                     = "decrypt"
	OpSharedSecret                = "shared_secret"
	OpSign                        = "sign"
	OpVerify                      = "verify"
	OpFingerprint                 = "fingerprint"
)

// Observer receives a callback per engine operation. The returned function
// is called once with the operation's error (nil on success).
// Implementations must be safe for concurrent use.
type Observer interface {
	Operation(op string) func(err error)
}

// NopObserver discards all operation events.
type NopObserver struct{}

// Operation implements Observer.
func (NopObserver) Operation(string) func(error) { return func(error) {} }

// Engine performs the protocol's cryptographic operations.
type Engine struct {
	provider   Provider
	rand       io.Reader
	observer   Observer
	serializer Serializer
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the cryptographic backend.
func WithProvider(p Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithRandom sets the entropy source used for key generation and signing.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithObserver sets the operation observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithSerializer sets the public key serializer used for fingerprints.
func WithSerializer(s Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// NewEngine creates an Engine. Without options it uses StdProvider,
// crypto/rand, no observer and the OTR wire serializer.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		provider:   StdProvider{},
		rand:       Reader,
		observer:   NopObserver{},
		serializer: WireSerializer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Default returns a shared Engine with the default configuration.
func Default() *Engine {
	return defaultEngine
}

func (e *Engine) observe(op string) func(error) {
	return e.observer.Operation(op)
}
