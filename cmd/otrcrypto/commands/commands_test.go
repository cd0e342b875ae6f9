package commands

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/wire"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "otrcrypto version "+getVersion()) {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSelftestCommand(t *testing.T) {
	out, err := run(t, "selftest")
	if err != nil {
		t.Fatalf("selftest failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All self-tests passed") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "FAIL") {
		t.Errorf("self-test reported a failure: %q", out)
	}
}

func TestKeygenAndFingerprintDH(t *testing.T) {
	out, err := run(t, "keygen", "--type", "dh")
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	fields := parseKeygen(t, out)
	if fields["type"] != "DH" {
		t.Errorf("expected DH key type, got %q", fields["type"])
	}

	fpOut, err := run(t, "fingerprint", "--type", "dh", fields["public"])
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if !strings.Contains(fpOut, fields["fingerprint"]) {
		t.Errorf("fingerprint mismatch: keygen %s, fingerprint %q", fields["fingerprint"], fpOut)
	}
}

func TestFingerprintDSA(t *testing.T) {
	e := crypto.Default()
	kp, err := e.GenerateSigningKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := wire.MarshalDSAPublicKey(kp.Public.DSA())
	if err != nil {
		t.Fatal(err)
	}
	want, err := e.FingerprintHex(kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "fingerprint", hex.EncodeToString(encoded))
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if strings.TrimSpace(out) != "Fingerprint: "+want {
		t.Errorf("got %q, want fingerprint %s", out, want)
	}
}

func TestFingerprintInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad hex", []string{"fingerprint", "zz"}},
		{"truncated key", []string{"fingerprint", "0000000000"}},
		{"degenerate DH value", []string{"fingerprint", "--type", "dh", "0000000101"}},
		{"unknown type", []string{"fingerprint", "--type", "rsa", "00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBenchCommand(t *testing.T) {
	out, err := run(t, "bench", "--iterations", "2", "--size", "64", "--metrics")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	for _, want := range []string{"dsa_sign", "dh_shared_secret", "otr_crypto_operations_total"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestInvalidGlobalFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"tracing mode", []string{"--tracing", "bogus", "version"}},
		{"log level", []string{"--log-level", "loud", "version"}},
		{"log format", []string{"--log-format", "xml", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func parseKeygen(t *testing.T, out string) map[string]string {
	t.Helper()
	fields := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			t.Fatalf("unexpected line %q", line)
		}
		fields[k] = strings.TrimSpace(v)
	}
	if _, err := hex.DecodeString(fields["public"]); err != nil {
		t.Fatalf("public key is not hex: %v", err)
	}
	if _, ok := new(big.Int).SetString(fields["fingerprint"], 16); !ok {
		t.Fatalf("fingerprint is not hex: %q", fields["fingerprint"])
	}
	return fields
}
