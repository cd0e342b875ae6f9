// cst.go implements Conditional Self-Tests (CST).
//
// A pairwise consistency test checks that a freshly generated key pair
// actually works before it is handed out: a DSA pair must verify its own
// signature and reject a forged one, and a DH pair must agree with a
// fresh peer in both directions.
//
// Pairwise tests are enabled by default only in FIPS mode. In FIPS mode a
// failure panics; otherwise it is returned as an error.
package crypto

import (
	"bytes"
	"fmt"
	"sync/atomic"

	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// CSTConfig configures Conditional Self-Test behavior
type CSTConfig struct {
	// EnablePairwiseTest enables pairwise consistency tests on key generation
	EnablePairwiseTest bool

	// EnableRNGHealthCheck runs RNGHealthCheck before each key generation
	EnableRNGHealthCheck bool
}

// DefaultCSTConfig returns the default CST configuration.
func DefaultCSTConfig() CSTConfig {
	return CSTConfig{
		EnablePairwiseTest:   FIPSMode(),
		EnableRNGHealthCheck: FIPSMode(),
	}
}

var cstConfig atomic.Pointer[CSTConfig]

func init() {
	cfg := DefaultCSTConfig()
	cstConfig.Store(&cfg)
}

// SetCSTConfig installs config and returns the previous configuration.
func SetCSTConfig(config CSTConfig) CSTConfig {
	prev := cstConfig.Swap(&config)
	return *prev
}

// GetCSTConfig returns the current CST configuration.
func GetCSTConfig() CSTConfig {
	return *cstConfig.Load()
}

// CSTEnabled returns true if any Conditional Self-Test is enabled.
func CSTEnabled() bool {
	cfg := GetCSTConfig()
	return cfg.EnablePairwiseTest || cfg.EnableRNGHealthCheck
}

// CSTResult contains the results of a Conditional Self-Test
type CSTResult struct {
	Passed bool
	Error  error
}

var pairwiseMessage = []byte("pairwise-consistency")

// PairwiseConsistencyTestSigning signs a fixed message with kp and checks
// that the signature verifies and that a modified message does not.
func PairwiseConsistencyTestSigning(e *Engine, kp *SigningKeyPair) *CSTResult {
	if kp == nil || kp.Private == nil || kp.Public == nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("invalid key pair")}
	}

	sig, err := e.Sign(pairwiseMessage, kp.Private)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("sign failed: %w", err)}
	}

	ok, err := e.Verify(pairwiseMessage, kp.Public, sig)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("verify failed: %w", err)}
	}
	if !ok {
		return &CSTResult{Passed: false, Error: fmt.Errorf("signature does not verify")}
	}

	forged := bytes.Clone(pairwiseMessage)
	forged[0] ^= 0x01
	ok, err = e.Verify(forged, kp.Public, sig)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("verify failed: %w", err)}
	}
	if ok {
		return &CSTResult{Passed: false, Error: fmt.Errorf("signature verifies a different message")}
	}

	return &CSTResult{Passed: true}
}

// PairwiseConsistencyTestKeyAgreement runs DH with a fresh peer in both
// directions and checks that the results match.
func PairwiseConsistencyTestKeyAgreement(e *Engine, kp *KeyAgreementKeyPair) *CSTResult {
	if kp == nil || kp.Private == nil || kp.Public == nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("invalid key pair")}
	}

	peer, err := e.generateKeyAgreementKeyPair()
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("failed to generate test key pair: %w", err)}
	}

	secret1, err := e.SharedSecret(kp.Private, peer.Public)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("DH operation 1 failed: %w", err)}
	}
	secret2, err := e.SharedSecret(peer.Private, kp.Public)
	if err != nil {
		return &CSTResult{Passed: false, Error: fmt.Errorf("DH operation 2 failed: %w", err)}
	}

	if secret1.Cmp(secret2) != 0 {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secrets do not match")}
	}
	if secret1.Cmp(dhMinimumPublicKey) < 0 {
		return &CSTResult{Passed: false, Error: fmt.Errorf("shared secret is degenerate")}
	}

	return &CSTResult{Passed: true}
}

func runPairwiseTestSigning(e *Engine, kp *SigningKeyPair) error {
	return runCST("DSA pairwise consistency test", GetCSTConfig().EnablePairwiseTest, func() *CSTResult {
		return PairwiseConsistencyTestSigning(e, kp)
	})
}

func runPairwiseTestKeyAgreement(e *Engine, kp *KeyAgreementKeyPair) error {
	return runCST("DH pairwise consistency test", GetCSTConfig().EnablePairwiseTest, func() *CSTResult {
		return PairwiseConsistencyTestKeyAgreement(e, kp)
	})
}

func runRNGHealthCheck(e *Engine) error {
	return runCST("RNG health check", GetCSTConfig().EnableRNGHealthCheck, func() *CSTResult {
		return RNGHealthCheck(e)
	})
}

func runCST(name string, enabled bool, test func() *CSTResult) error {
	if !enabled {
		return nil
	}
	result := test()
	if !result.Passed {
		if FIPSMode() {
			panic(fmt.Sprintf("FIPS CST failed: %s: %v", name, result.Error))
		}
		return fmt.Errorf("%w: %s: %w", qerrors.ErrSelfTestFailed, name, result.Error)
	}
	return nil
}

// RNGHealthCheck draws two samples from the engine's entropy source and
// checks that neither is constant and that they differ.
func RNGHealthCheck(e *Engine) *CSTResult {
	sample1 := make([]byte, 32)
	sample2 := make([]byte, 32)

	if err := readRandom(e.rand, "RNGHealthCheck", sample1); err != nil {
		return &CSTResult{Passed: false, Error: err}
	}
	if err := readRandom(e.rand, "RNGHealthCheck", sample2); err != nil {
		return &CSTResult{Passed: false, Error: err}
	}

	if isConstant(sample1) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG sample 1 has no variation")}
	}
	if isConstant(sample2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG sample 2 has no variation")}
	}
	if bytes.Equal(sample1, sample2) {
		return &CSTResult{Passed: false, Error: fmt.Errorf("RNG produced identical consecutive samples")}
	}

	return &CSTResult{Passed: true}
}

func isConstant(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}
