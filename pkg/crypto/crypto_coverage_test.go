package crypto

import (
	"bytes"
	"errors"
	"hash"
	"math/big"
	"testing"

	"github.com/pzverkov/otrcrypto/internal/constants"
	qerrors "github.com/pzverkov/otrcrypto/internal/errors"
)

// missingHashProvider behaves like a backend built without SHA support.
type missingHashProvider struct {
	StdProvider
}

func (missingHashProvider) Hash(constants.HashAlgorithm) hash.Hash { return nil }

func TestMissingHashIsFatal(t *testing.T) {
	e := NewEngine(WithProvider(missingHashProvider{}))

	calls := []struct {
		name string
		fn   func()
	}{
		{"SHA256", func() { e.SHA256([]byte("x")) }},
		{"SHA1", func() { e.SHA1([]byte("x")) }},
		{"HMACSHA1 with empty key", func() { _, _ = e.HMACSHA1([]byte("x"), nil, 0) }},
	}
	for _, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				r := recover()
				envErr, ok := r.(*qerrors.EnvironmentError)
				if !ok {
					t.Fatalf("expected EnvironmentError panic, got %v", r)
				}
				if !errors.Is(envErr, qerrors.ErrAlgorithmUnavailable) {
					t.Errorf("unexpected cause: %v", envErr)
				}
			}()
			c.fn()
		})
	}
}

func TestSharedSecretRejectsInvalidPeer(t *testing.T) {
	e := NewEngine()
	kp, err := e.generateKeyAgreementKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	bad := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Set(dhModulusMinusOne),
		new(big.Int).Set(dhModulus),
		new(big.Int).Add(dhModulus, big.NewInt(7)),
	}
	for _, y := range bad {
		_, err := e.SharedSecret(kp.Private, &KeyAgreementPublicKey{y: y})
		if !qerrors.IsRecoverable(err) {
			t.Errorf("y=%v: expected CryptoError, got %v", y, err)
		}
		if !errors.Is(err, qerrors.ErrInvalidPublicKey) {
			t.Errorf("y=%v: expected ErrInvalidPublicKey, got %v", y, err)
		}
	}
}

func TestSharedSecretRejectsInvalidPrivate(t *testing.T) {
	e := NewEngine()
	peer := &KeyAgreementPublicKey{y: big.NewInt(4)}

	for _, x := range []*big.Int{big.NewInt(0), big.NewInt(-3), new(big.Int).Set(dhModulus)} {
		_, err := e.SharedSecret(&KeyAgreementPrivateKey{x: x}, peer)
		if !errors.Is(err, qerrors.ErrInvalidPrivateKey) {
			t.Errorf("x=%v: expected ErrInvalidPrivateKey, got %v", x, err)
		}
	}
}

func TestGeneratedExponentLength(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 8; i++ {
		kp, err := e.generateKeyAgreementKeyPair()
		if err != nil {
			t.Fatal(err)
		}
		if kp.Private.x.BitLen() != constants.DHPrivateKeyMinBits {
			t.Errorf("exponent has %d bits, want %d", kp.Private.x.BitLen(), constants.DHPrivateKeyMinBits)
		}
	}
}

func TestRawSigningData(t *testing.T) {
	q := new(big.Int).Lsh(big.NewInt(1), 159)
	q.Add(q, big.NewInt(7))

	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{"exact length kept", bytes.Repeat([]byte{0xFF}, 20), bytes.Repeat([]byte{0xFF}, 20)},
		{"empty", nil, make([]byte, 20)},
		{"short padded", []byte{0x01, 0x02}, append(make([]byte, 18), 0x01, 0x02)},
		{"q reduces to zero", q.FillBytes(make([]byte, 32)), make([]byte, 20)},
		{"q+5 reduces to five", new(big.Int).Add(q, big.NewInt(5)).FillBytes(make([]byte, 24)), append(make([]byte, 19), 0x05)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rawSigningData(q, tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("rawSigningData = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestRawSigningDataLargeSubgroup(t *testing.T) {
	q := new(big.Int).Lsh(big.NewInt(1), 255)
	q.Add(q, big.NewInt(1))

	_, err := rawSigningData(q, bytes.Repeat([]byte{0xFF}, 32))
	if !errors.Is(err, qerrors.ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestEncodeSignaturePadding(t *testing.T) {
	q := new(big.Int).Lsh(big.NewInt(1), 159)
	sig, err := encodeSignature(q, big.NewInt(1), big.NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 40 {
		t.Fatalf("signature length = %d", len(sig))
	}
	if sig[19] != 1 || sig[39] != 2 {
		t.Errorf("unexpected layout %x", sig)
	}
	if !bytes.Equal(sig[:19], make([]byte, 19)) {
		t.Error("r is not left-padded")
	}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 170)
	if _, err := encodeSignature(q, tooBig, big.NewInt(1)); err == nil {
		t.Error("expected error for oversized r")
	}
}
