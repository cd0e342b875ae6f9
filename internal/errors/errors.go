// Package errors defines the error types of the OTR crypto layer.
//
// Three tiers exist. CryptoError wraps recoverable failures caused by
// malformed or invalid key material, usually from an untrusted peer.
// UsageError reports a caller defect such as a missing key. EnvironmentError
// describes a broken backend and is only ever raised as a panic value.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for key material
var (
	// ErrInvalidKeySize indicates that a key has an incorrect size
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidKey indicates that symmetric key material is unusable
	ErrInvalidKey = errors.New("crypto: invalid key")

	// ErrInvalidPublicKey indicates that a public key is invalid for the group
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrInvalidPrivateKey indicates that a private key is invalid
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")

	// ErrInvalidParameters indicates that DSA domain parameters are unusable
	ErrInvalidParameters = errors.New("crypto: invalid domain parameters")

	// ErrKeyGenerationFailed indicates that key generation failed
	ErrKeyGenerationFailed = errors.New("crypto: key generation failed")

	// ErrEntropy indicates the random source returned an error or short read
	ErrEntropy = errors.New("crypto: entropy source failed")
)

// Sentinel errors for cipher and signature operations
var (
	// ErrInvalidCounter indicates the CTR counter block has the wrong size
	ErrInvalidCounter = errors.New("cipher: invalid counter size")

	// ErrInvalidSignature indicates a signature encoding is malformed.
	// A well-formed signature that does not verify is not an error.
	ErrInvalidSignature = errors.New("signature: malformed encoding")

	// ErrSigningFailed indicates the signing backend failed
	ErrSigningFailed = errors.New("signature: signing failed")

	// ErrSerializationFailed indicates a public key could not be serialized
	ErrSerializationFailed = errors.New("fingerprint: key serialization failed")
)

// Sentinel errors for caller defects
var (
	// ErrWrongKeyType indicates a key of the wrong family was supplied
	ErrWrongKeyType = errors.New("usage: wrong key type")

	// ErrNilKey indicates a required key was nil or zero-valued
	ErrNilKey = errors.New("usage: nil key")

	// ErrInvalidTruncation indicates a MAC truncation longer than the digest
	ErrInvalidTruncation = errors.New("usage: truncation exceeds digest size")
)

// Sentinel errors for the backend
var (
	// ErrAlgorithmUnavailable indicates the provider lacks a required algorithm
	ErrAlgorithmUnavailable = errors.New("provider: algorithm unavailable")

	// ErrSelfTestFailed indicates a power-on or conditional self-test failed
	ErrSelfTestFailed = errors.New("provider: self-test failed")
)

// CryptoError wraps a recoverable cryptographic error with additional context
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// UsageError reports that the caller passed something the API never accepts.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new UsageError
func NewUsageError(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

// EnvironmentError describes a deployment defect in the crypto backend.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// Fatal panics with an EnvironmentError. It must never be reached through
// attacker-controlled input.
func Fatal(op string, err error) {
	panic(&EnvironmentError{Op: op, Err: err})
}

// IsRecoverable reports whether err is a CryptoError.
func IsRecoverable(err error) bool {
	var cerr *CryptoError
	return errors.As(err, &cerr)
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var uerr *UsageError
	return errors.As(err, &uerr)
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
