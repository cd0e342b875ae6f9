package wire

import (
	"bytes"
	"crypto/dsa" //nolint:staticcheck
	"errors"
	"math/big"
	"testing"

	"golang.org/x/crypto/cryptobyte"
)

func TestMarshalMPI(t *testing.T) {
	tests := []struct {
		name string
		v    *big.Int
		want []byte
	}{
		{"zero", big.NewInt(0), []byte{0, 0, 0, 0}},
		{"one byte", big.NewInt(0x7f), []byte{0, 0, 0, 1, 0x7f}},
		{"high bit", big.NewInt(0x80), []byte{0, 0, 0, 1, 0x80}},
		{"two bytes", big.NewInt(0x0102), []byte{0, 0, 0, 2, 0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalMPI(tt.v)
			if err != nil {
				t.Fatalf("MarshalMPI failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("MarshalMPI(%v) = %x, want %x", tt.v, got, tt.want)
			}
		})
	}
}

func TestMarshalMPINegative(t *testing.T) {
	if _, err := MarshalMPI(big.NewInt(-1)); !errors.Is(err, ErrNegative) {
		t.Errorf("expected ErrNegative, got %v", err)
	}
	if _, err := MarshalMPI(nil); !errors.Is(err, ErrNegative) {
		t.Errorf("expected ErrNegative for nil, got %v", err)
	}
}

func TestParseMPI(t *testing.T) {
	v, err := ParseMPI([]byte{0, 0, 0, 2, 0x01, 0x00})
	if err != nil {
		t.Fatalf("ParseMPI failed: %v", err)
	}
	if v.Int64() != 256 {
		t.Errorf("ParseMPI = %v, want 256", v)
	}

	malformed := [][]byte{
		{},
		{0, 0, 0},
		{0, 0, 0, 2, 0x01},
		{0, 0, 0, 1, 0x01, 0xff},
	}
	for _, data := range malformed {
		if _, err := ParseMPI(data); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseMPI(%x) error = %v, want ErrMalformed", data, err)
		}
	}
}

func TestParseMPIRejectsOversized(t *testing.T) {
	var b cryptobyte.Builder
	AppendDATA(&b, make([]byte, 1<<12+1))
	data := b.BytesOrPanic()

	if _, err := ParseMPI(data); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestDATARoundTrip(t *testing.T) {
	var b cryptobyte.Builder
	AppendDATA(&b, []byte("hello"))
	AppendDATA(&b, nil)
	data := b.BytesOrPanic()

	s := cryptobyte.String(data)
	first, err := ReadDATA(&s)
	if err != nil || string(first) != "hello" {
		t.Fatalf("ReadDATA = %q, %v", first, err)
	}
	second, err := ReadDATA(&s)
	if err != nil || len(second) != 0 {
		t.Fatalf("ReadDATA = %q, %v", second, err)
	}
	if !s.Empty() {
		t.Error("trailing bytes after two DATA fields")
	}
}

func TestReadLengthPrefixErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short length", []byte{0, 0, 1}},
		{"length past end", []byte{0, 0, 0, 4, 0xAA, 0xBB}},
		{"max length", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.data)
			if _, err := ReadDATA(&s); !errors.Is(err, ErrMalformed) {
				t.Errorf("ReadDATA error = %v, want ErrMalformed", err)
			}
			s = cryptobyte.String(tt.data)
			if _, err := ReadMPI(&s); !errors.Is(err, ErrMalformed) {
				t.Errorf("ReadMPI error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestReadMPISequence(t *testing.T) {
	var b cryptobyte.Builder
	AppendMPI(&b, big.NewInt(0x0102))
	AppendMPI(&b, big.NewInt(0))
	AppendDATA(&b, []byte{0xCA, 0xFE})
	s := cryptobyte.String(b.BytesOrPanic())

	first, err := ReadMPI(&s)
	if err != nil || first.Int64() != 0x0102 {
		t.Fatalf("first MPI = %v, %v", first, err)
	}
	second, err := ReadMPI(&s)
	if err != nil || second.Sign() != 0 {
		t.Fatalf("second MPI = %v, %v", second, err)
	}
	d, err := ReadDATA(&s)
	if err != nil || !bytes.Equal(d, []byte{0xCA, 0xFE}) {
		t.Fatalf("DATA = %x, %v", d, err)
	}
	if !s.Empty() {
		t.Error("unexpected trailing bytes")
	}
}

func testDSAKey() *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{
			P: big.NewInt(23),
			Q: big.NewInt(11),
			G: big.NewInt(4),
		},
		Y: big.NewInt(8),
	}
}

func TestDSAPublicKeyEncoding(t *testing.T) {
	data, err := MarshalDSAPublicKey(testDSAKey())
	if err != nil {
		t.Fatalf("MarshalDSAPublicKey failed: %v", err)
	}

	want := []byte{
		0x00, 0x00,
		0, 0, 0, 1, 23,
		0, 0, 0, 1, 11,
		0, 0, 0, 1, 4,
		0, 0, 0, 1, 8,
	}
	if !bytes.Equal(data, want) {
		t.Errorf("encoding = %x, want %x", data, want)
	}

	parsed, err := ParseDSAPublicKey(data)
	if err != nil {
		t.Fatalf("ParseDSAPublicKey failed: %v", err)
	}
	key := testDSAKey()
	if parsed.P.Cmp(key.P) != 0 || parsed.Q.Cmp(key.Q) != 0 ||
		parsed.G.Cmp(key.G) != 0 || parsed.Y.Cmp(key.Y) != 0 {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

func TestParseDSAPublicKeyErrors(t *testing.T) {
	data, _ := MarshalDSAPublicKey(testDSAKey())

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformed},
		{"truncated", data[:len(data)-1], ErrMalformed},
		{"trailing", append(append([]byte{}, data...), 0x00), ErrMalformed},
		{"wrong type", append([]byte{0x00, 0x01}, data[2:]...), ErrUnknownKeyType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDSAPublicKey(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMarshalDSAPublicKeyNil(t *testing.T) {
	if _, err := MarshalDSAPublicKey(nil); err == nil {
		t.Error("expected error for nil key")
	}
	key := testDSAKey()
	key.Y = nil
	if _, err := MarshalDSAPublicKey(key); err == nil {
		t.Error("expected error for key with nil Y")
	}
}
