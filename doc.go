// Package otrcrypto provides the cryptographic primitives of the
// Off-the-Record messaging protocol (version 3).
//
// All algorithm choices are fixed by the protocol: DSA signatures over
// 1024-bit keys, Diffie-Hellman in the RFC 3526 1536-bit MODP group,
// AES-CTR without padding, HMAC over SHA-1 or SHA-256, and SHA-1 public
// key fingerprints. Session logic, the AKE and message framing live in
// higher layers; this module only computes.
//
// # Quick Start
//
//	import "github.com/pzverkov/otrcrypto/pkg/crypto"
//
//	e := crypto.Default()
//
//	// Long-term identity
//	id, _ := e.GenerateSigningKeyPair()
//	sig, _ := e.Sign(data, id.Private)
//	ok, _ := e.Verify(data, id.Public, sig)
//	fp, _ := e.FingerprintHex(id.Public)
//
//	// Key agreement
//	ours, _ := e.GenerateKeyAgreementKeyPair()
//	peer, _ := e.DecodeKeyAgreementPublicKey(peerBytes)
//	secret, _ := e.SharedSecret(ours.Private, peer)
//
// # Package Structure
//
//   - pkg/crypto: Engine, key types, self-tests and the provider interface
//   - pkg/wire: OTR MPI, DATA and DSA public key encodings
//   - pkg/metrics: Logging, Prometheus metrics, tracing and health endpoints
//   - pkg/version: Release version information
//   - cmd/otrcrypto: Developer CLI (self-test, keygen, fingerprint, bench, serve)
//   - internal/constants: Protocol constants
//   - internal/errors: Error tiers and sentinel errors
//
// # Errors
//
// Failures caused by bad key material or peer input are returned as
// *errors.CryptoError. Missing keys are *errors.UsageError. A signature
// that does not verify is reported as (false, nil). A backend that lacks
// a required algorithm panics with *errors.EnvironmentError.
//
// # Testing
//
//	go test ./...                                  # All tests
//	go test -tags fips ./pkg/crypto                # FIPS mode self-tests
//	go test -fuzz=FuzzParseDSAPublicKey ./test/fuzz/
//	go test -run TestKAT ./pkg/crypto              # Known Answer Tests
//	go test -bench=. ./test/benchmark              # Benchmarks
//
// # References
//
//   - OTR Protocol Version 3
//   - RFC 3526: More MODP Diffie-Hellman groups for IKE
//   - FIPS 186-4: Digital Signature Standard
//   - NIST SP 800-38A: Recommendation for Block Cipher Modes of Operation
//   - RFC 2104, RFC 2202, RFC 4231: HMAC and its test vectors
package otrcrypto
