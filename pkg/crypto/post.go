// post.go implements Power-On Self-Tests (POST).
//
// POST runs once when the package is loaded and checks every primitive
// against published Known Answer Test vectors:
//   - SHA-1 and SHA-256: FIPS 180 "abc" vectors
//   - HMAC-SHA1: RFC 2202 test case 2
//   - HMAC-SHA256: RFC 4231 test case 2
//   - AES-128-CTR: NIST SP 800-38A F.5.1, first two blocks
//   - DH group: modulus size and primality, generator, agreement symmetry
//
// In FIPS mode a POST failure panics. In standard mode the result is
// recorded and exposed through RunPOST.
package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/pzverkov/otrcrypto/internal/constants"
)

// POST KAT (Known Answer Test) values
var (
	postKATHashInput      = []byte("abc")
	postKATSHA1Expected   = mustHex("a9993e364706816aba3e25717850c26c9cd0d89d")
	postKATSHA256Expected = mustHex("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")

	postKATHMACKey            = []byte("Jefe")
	postKATHMACData           = []byte("what do ya want for nothing?")
	postKATHMACSHA1Expected   = mustHex("effcdf6ae5eb2fa2d27416d5f184df9c259a7c79")
	postKATHMACSHA256Expected = mustHex("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")

	postKATAESKey       = mustHex("2b7e151628aed2a6abf7158809cf4f3c")
	postKATAESCounter   = mustHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	postKATAESPlaintext = mustHex("6bc1bee22e409f96e93d7e117393172a" + "ae2d8a571e03ac9c9eb76fac45af8e51")
	postKATAESExpected  = mustHex("874d6191b620e3261bef6864990db6ce" + "9806f66b7970fdff8617187bb9fffdff")

	postKATDHExponentA = big.NewInt(0x1234567)
	postKATDHExponentB = big.NewInt(0x7654321)
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("crypto: invalid hex constant")
	}
	return b
}

// POSTResult contains the results of Power-On Self-Tests
type POSTResult struct {
	Passed       bool
	HashPassed   bool
	HMACPassed   bool
	CipherPassed bool
	DHPassed     bool
	Errors       []string
}

var (
	postResult     *POSTResult
	postResultOnce sync.Once
	postRan        bool
)

// RunPOST executes the Power-On Self-Tests with the standard provider and
// returns the results. The tests run only once; later calls return the
// cached result.
func RunPOST() *POSTResult {
	postResultOnce.Do(func() {
		postResult = NewEngine().SelfTest()
		postRan = true

		if FIPSMode() && !postResult.Passed {
			panic(fmt.Sprintf("FIPS POST failed: %v", postResult.Errors))
		}
	})

	return postResult
}

// SelfTest runs the known-answer tests against e's provider. Use it to
// vet a custom Provider before trusting it. Results are not cached and a
// failure never panics.
func (e *Engine) SelfTest() *POSTResult {
	result := &POSTResult{Passed: true}

	check := func(name string, passed *bool, fn func(*Engine) error) {
		if err := fn(e); err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s KAT failed: %v", name, err))
			return
		}
		*passed = true
	}

	check("hash", &result.HashPassed, runHashKAT)
	check("HMAC", &result.HMACPassed, runHMACKAT)
	check("AES-CTR", &result.CipherPassed, runAESCTRKAT)
	check("DH", &result.DHPassed, runDHKAT)
	return result
}

// POSTRan returns true if POST has been executed
func POSTRan() bool {
	return postRan
}

// POSTPassed returns true if POST has run and all tests passed
func POSTPassed() bool {
	if postResult == nil {
		return false
	}
	return postResult.Passed
}

func runHashKAT(e *Engine) error {
	if got := e.SHA1(postKATHashInput); !bytes.Equal(got, postKATSHA1Expected) {
		return fmt.Errorf("SHA-1 mismatch: got %x, want %x", got, postKATSHA1Expected)
	}
	if got := e.SHA256(postKATHashInput); !bytes.Equal(got, postKATSHA256Expected) {
		return fmt.Errorf("SHA-256 mismatch: got %x, want %x", got, postKATSHA256Expected)
	}
	return nil
}

func runHMACKAT(e *Engine) error {
	got, err := e.HMACSHA1(postKATHMACData, postKATHMACKey, 0)
	if err != nil {
		return fmt.Errorf("HMAC-SHA1 failed: %w", err)
	}
	if !bytes.Equal(got, postKATHMACSHA1Expected) {
		return fmt.Errorf("HMAC-SHA1 mismatch: got %x, want %x", got, postKATHMACSHA1Expected)
	}

	got, err = e.HMACSHA256(postKATHMACData, postKATHMACKey, 0)
	if err != nil {
		return fmt.Errorf("HMAC-SHA256 failed: %w", err)
	}
	if !bytes.Equal(got, postKATHMACSHA256Expected) {
		return fmt.Errorf("HMAC-SHA256 mismatch: got %x, want %x", got, postKATHMACSHA256Expected)
	}
	return nil
}

func runAESCTRKAT(e *Engine) error {
	ciphertext, err := e.Encrypt(postKATAESKey, postKATAESCounter, postKATAESPlaintext)
	if err != nil {
		return fmt.Errorf("Encrypt failed: %w", err)
	}
	if !bytes.Equal(ciphertext, postKATAESExpected) {
		return fmt.Errorf("AES-CTR encrypt mismatch: got %x, want %x", ciphertext, postKATAESExpected)
	}

	plaintext, err := e.Decrypt(postKATAESKey, postKATAESCounter, ciphertext)
	if err != nil {
		return fmt.Errorf("Decrypt failed: %w", err)
	}
	if !bytes.Equal(plaintext, postKATAESPlaintext) {
		return fmt.Errorf("AES-CTR decrypt mismatch: got %x, want %x", plaintext, postKATAESPlaintext)
	}
	return nil
}

func runDHKAT(e *Engine) error {
	if dhModulus.BitLen() != constants.DHModulusBits {
		return fmt.Errorf("modulus has %d bits, want %d", dhModulus.BitLen(), constants.DHModulusBits)
	}
	if !dhModulus.ProbablyPrime(0) {
		return fmt.Errorf("modulus is not prime")
	}
	if dhGenerator.Int64() != constants.DHGenerator {
		return fmt.Errorf("generator is %v, want %d", dhGenerator, constants.DHGenerator)
	}

	a, err := e.KeyAgreementKeyPairFromPrivate(postKATDHExponentA)
	if err != nil {
		return fmt.Errorf("key pair A: %w", err)
	}
	b, err := e.KeyAgreementKeyPairFromPrivate(postKATDHExponentB)
	if err != nil {
		return fmt.Errorf("key pair B: %w", err)
	}

	s1, err := e.SharedSecret(a.Private, b.Public)
	if err != nil {
		return fmt.Errorf("agreement A: %w", err)
	}
	s2, err := e.SharedSecret(b.Private, a.Public)
	if err != nil {
		return fmt.Errorf("agreement B: %w", err)
	}
	if s1.Cmp(s2) != 0 {
		return fmt.Errorf("shared secrets do not match")
	}

	// Cross-check the provider against math/big: g^(ab) mod p.
	ab := new(big.Int).Mul(postKATDHExponentA, postKATDHExponentB)
	if want := new(big.Int).Exp(dhGenerator, ab, dhModulus); s1.Cmp(want) != 0 {
		return fmt.Errorf("shared secret does not match g^(ab) mod p")
	}
	return nil
}

func init() {
	RunPOST()
}
