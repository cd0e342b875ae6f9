// Package fuzz provides fuzz tests for the functions that handle peer input.
//
// Run fuzz tests with:
//
//	go test -fuzz=FuzzParseDSAPublicKey -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzParseMPI -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzDecodeKeyAgreementPublicKey -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzVerify -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzDecrypt -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzHMAC -fuzztime=30s ./test/fuzz/
//
// Run all fuzz tests sequentially:
//
//	go test -fuzz=Fuzz -fuzztime=10s ./test/fuzz/
package fuzz

import (
	"bytes"
	"math/big"
	"sync"
	"testing"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/wire"
)

var (
	keyOnce sync.Once
	key     *crypto.SigningKeyPair
	keyErr  error
)

func signingKey(f *testing.F) *crypto.SigningKeyPair {
	keyOnce.Do(func() {
		key, keyErr = crypto.Default().GenerateSigningKeyPair()
	})
	if keyErr != nil {
		f.Fatalf("GenerateSigningKeyPair failed: %v", keyErr)
	}
	return key
}

// FuzzParseDSAPublicKey fuzzes the DSA public key decoder.
func FuzzParseDSAPublicKey(f *testing.F) {
	kp := signingKey(f)
	valid, _ := wire.MarshalDSAPublicKey(kp.Public.DSA())
	f.Add(valid)

	// Edge cases
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00})
	f.Add(valid[:len(valid)-1])
	f.Add(append(bytes.Clone(valid), 0x00))

	f.Fuzz(func(t *testing.T, data []byte) {
		pub, err := wire.ParseDSAPublicKey(data)
		if err != nil {
			return
		}

		// Every accepted key must survive construction or be rejected cleanly.
		spk, err := crypto.NewSigningPublicKey(pub.P, pub.Q, pub.G, pub.Y)
		if err != nil {
			if !qerrors.IsRecoverable(err) {
				t.Errorf("expected CryptoError, got %v", err)
			}
			return
		}

		fp, err := crypto.Default().Fingerprint(spk)
		if err != nil {
			t.Fatalf("Fingerprint failed on an accepted key: %v", err)
		}
		if len(fp) != constants.FingerprintSize {
			t.Errorf("fingerprint has wrong size: %d", len(fp))
		}
	})
}

// FuzzParseMPI fuzzes the MPI decoder.
func FuzzParseMPI(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0, 0, 0, 1, 0x80})
	f.Add([]byte{0, 0, 0, 2, 0x00, 0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := wire.ParseMPI(data)
		if err != nil {
			return
		}
		if v.Sign() < 0 {
			t.Fatal("decoded MPI is negative")
		}

		// Re-encoding is minimal, so it can only be shorter.
		enc, err := wire.MarshalMPI(v)
		if err != nil {
			t.Fatalf("MarshalMPI failed: %v", err)
		}
		if len(enc) > len(data) {
			t.Errorf("re-encoding grew from %d to %d bytes", len(data), len(enc))
		}
		back, err := wire.ParseMPI(enc)
		if err != nil || back.Cmp(v) != 0 {
			t.Errorf("round trip failed: %v", err)
		}
	})
}

// FuzzDecodeKeyAgreementPublicKey fuzzes DH public value validation.
func FuzzDecodeKeyAgreementPublicKey(f *testing.F) {
	p := crypto.DHModulus()
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0x01})
	f.Add([]byte{0x02})
	f.Add(p.Bytes())
	f.Add(new(big.Int).Sub(p, big.NewInt(1)).Bytes())
	f.Add(new(big.Int).Sub(p, big.NewInt(2)).Bytes())

	e := crypto.Default()
	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))

	f.Fuzz(func(t *testing.T, data []byte) {
		pub, err := e.DecodeKeyAgreementPublicKey(data)
		y := new(big.Int).SetBytes(data)
		inRange := len(data) > 0 && y.Cmp(big.NewInt(2)) >= 0 && y.Cmp(pMinus1) < 0

		if err != nil {
			if inRange {
				t.Fatalf("rejected in-range value: %v", err)
			}
			if !qerrors.IsRecoverable(err) {
				t.Errorf("expected CryptoError, got %v", err)
			}
			return
		}
		if !inRange {
			t.Fatalf("accepted out-of-range value %x", data)
		}
		if pub.Y().Cmp(y) != 0 {
			t.Error("decoded value mismatch")
		}
	})
}

// FuzzVerify fuzzes signature verification with arbitrary messages and signatures.
func FuzzVerify(f *testing.F) {
	kp := signingKey(f)
	e := crypto.Default()

	msg := []byte("fuzz verify message!")
	sig, _ := e.Sign(msg, kp.Private)
	f.Add(msg, sig)
	f.Add([]byte{}, make([]byte, constants.DSASignatureSize))
	f.Add(msg, sig[:39])
	f.Add(msg, bytes.Repeat([]byte{0xff}, constants.DSASignatureSize))

	f.Fuzz(func(t *testing.T, data, signature []byte) {
		ok, err := e.Verify(data, kp.Public, signature)
		if len(signature) != constants.DSASignatureSize {
			if err == nil || ok {
				t.Fatalf("wrong-length signature not rejected: ok=%v err=%v", ok, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("well-formed signature returned an error: %v", err)
		}
	})
}

// FuzzDecrypt fuzzes AES-CTR with arbitrary keys, counters and data.
func FuzzDecrypt(f *testing.F) {
	f.Add(make([]byte, 16), make([]byte, 16), []byte("hello"))
	f.Add(make([]byte, 16), []byte{}, []byte{})
	f.Add(make([]byte, 7), make([]byte, 16), []byte("x"))
	f.Add(make([]byte, 32), make([]byte, 15), []byte("x"))

	e := crypto.Default()

	f.Fuzz(func(t *testing.T, key, counter, data []byte) {
		out, err := e.Decrypt(key, counter, data)
		if err != nil {
			if !qerrors.IsRecoverable(err) {
				t.Errorf("expected CryptoError, got %v", err)
			}
			return
		}
		if len(out) != len(data) {
			t.Fatalf("output length %d, input length %d", len(out), len(data))
		}
		back, err := e.Encrypt(key, counter, out)
		if err != nil || !bytes.Equal(back, data) {
			t.Errorf("CTR round trip failed: %v", err)
		}
	})
}

// FuzzHMAC fuzzes MAC truncation handling.
func FuzzHMAC(f *testing.F) {
	f.Add([]byte("data"), []byte("key"), 0)
	f.Add([]byte{}, []byte{}, 20)
	f.Add([]byte("data"), []byte("key"), 33)
	f.Add([]byte("data"), []byte("key"), -1)

	e := crypto.Default()

	f.Fuzz(func(t *testing.T, data, key []byte, truncate int) {
		mac, err := e.HMACSHA256(data, key, truncate)
		switch {
		case len(key) == 0:
			if !qerrors.IsRecoverable(err) {
				t.Fatalf("empty key: expected CryptoError, got %v", err)
			}
		case truncate > constants.SHA256Size:
			if !qerrors.IsUsage(err) {
				t.Fatalf("truncate %d: expected UsageError, got %v", truncate, err)
			}
		case truncate <= 0:
			if err != nil || len(mac) != constants.SHA256Size {
				t.Fatalf("truncate %d: got %d bytes, err %v", truncate, len(mac), err)
			}
		default:
			if err != nil || len(mac) != truncate {
				t.Fatalf("truncate %d: got %d bytes, err %v", truncate, len(mac), err)
			}
		}
	})
}
