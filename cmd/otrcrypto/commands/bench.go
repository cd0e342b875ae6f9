package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
)

func benchCmd() *cobra.Command {
	var (
		iterations  int
		size        int
		withKeygen  bool
		dumpMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time each engine operation",
		Long: `Run every engine operation a fixed number of times and print the
average latency. DSA key generation is slow and only runs with --keygen.
With --metrics the Prometheus exposition of the run is printed afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations <= 0 {
				return fmt.Errorf("--iterations must be positive")
			}
			out := cmd.OutOrStdout()
			if err := runBench(out, iterations, size, withKeygen); err != nil {
				return err
			}
			if dumpMetrics {
				fmt.Fprintln(out)
				return writeMetrics(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 100, "iterations per operation")
	cmd.Flags().IntVar(&size, "size", 1024, "payload size in bytes for hash, MAC and cipher operations")
	cmd.Flags().BoolVar(&withKeygen, "keygen", false, "include DSA key generation (slow)")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print Prometheus metrics after the run")
	return cmd
}

type benchCase struct {
	name string
	fn   func() error
}

func runBench(out io.Writer, iterations, size int, withKeygen bool) error {
	logger.Info("preparing benchmark keys")

	signing, err := engine.GenerateSigningKeyPair()
	if err != nil {
		return err
	}
	defer signing.Zeroize()

	alice, err := engine.GenerateKeyAgreementKeyPair()
	if err != nil {
		return err
	}
	bob, err := engine.GenerateKeyAgreementKeyPair()
	if err != nil {
		return err
	}

	payload := make([]byte, size)
	key := make([]byte, 16)
	if err := crypto.SecureRandom(key); err != nil {
		return err
	}
	msg := make([]byte, 20)
	sig, err := engine.Sign(msg, signing.Private)
	if err != nil {
		return err
	}

	cases := []benchCase{
		{"sha1", func() error { engine.SHA1(payload); return nil }},
		{"sha256", func() error { engine.SHA256(payload); return nil }},
		{"hmac_sha1", func() error { _, err := engine.HMACSHA1(payload, key, 0); return err }},
		{"hmac_sha256_160", func() error { _, err := engine.HMACSHA256Truncated160(payload, key); return err }},
		{"aes_ctr_encrypt", func() error { _, err := engine.Encrypt(key, nil, payload); return err }},
		{"dh_generate", func() error {
			kp, err := engine.GenerateKeyAgreementKeyPair()
			if err == nil {
				kp.Zeroize()
			}
			return err
		}},
		{"dh_shared_secret", func() error { _, err := engine.SharedSecret(alice.Private, bob.Public); return err }},
		{"dsa_sign", func() error { _, err := engine.Sign(msg, signing.Private); return err }},
		{"dsa_verify", func() error { _, err := engine.Verify(msg, signing.Public, sig); return err }},
		{"fingerprint", func() error { _, err := engine.Fingerprint(signing.Public); return err }},
	}
	if withKeygen {
		cases = append(cases, benchCase{"dsa_generate", func() error {
			kp, err := engine.GenerateSigningKeyPair()
			if err == nil {
				kp.Zeroize()
			}
			return err
		}})
	}

	fmt.Fprintf(out, "Benchmarking engine operations (%d iterations, %d byte payload)\n", iterations, size)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "%-20s %14s %14s\n", "operation", "avg", "ops/sec")

	for _, c := range cases {
		n := iterations
		if c.name == "dsa_generate" && n > 5 {
			n = 5
		}

		start := time.Now()
		for i := 0; i < n; i++ {
			if err := c.fn(); err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
		}
		elapsed := time.Since(start)
		avg := elapsed / time.Duration(n)

		fmt.Fprintf(out, "%-20s %14v %14.0f\n", c.name, avg, float64(n)/elapsed.Seconds())
	}
	return nil
}

func writeMetrics(out io.Writer) error {
	families, err := collector.Registry().Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
