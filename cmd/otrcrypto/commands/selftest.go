package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/metrics"
)

var errSelfTestFailed = errors.New("self-test failed")

func selftestCmd() *cobra.Command {
	var pairwise bool

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run power-on and conditional self-tests",
		Long: `Report the power-on self-test (KAT) results, run an RNG health check
and, with --pairwise, generate one key pair of each kind and run the
pairwise consistency tests on it. DSA parameter generation takes a
few seconds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest(cmd.OutOrStdout(), pairwise)
		},
	}
	cmd.Flags().BoolVar(&pairwise, "pairwise", false, "also generate keys and run pairwise consistency tests")
	return cmd
}

func runSelftest(out io.Writer, pairwise bool) error {
	failed := false
	report := func(name string, passed bool, detail error) {
		status := "PASS"
		if !passed {
			status = "FAIL"
			failed = true
		}
		if detail != nil {
			fmt.Fprintf(out, "  %-28s %s (%v)\n", name, status, detail)
		} else {
			fmt.Fprintf(out, "  %-28s %s\n", name, status)
		}
	}

	fmt.Fprintf(out, "FIPS mode: %v\n", crypto.FIPSMode())
	fmt.Fprintln(out, "Power-on self-tests:")
	post := crypto.RunPOST()
	report("SHA-1 / SHA-256", post.HashPassed, nil)
	report("HMAC-SHA1 / HMAC-SHA256", post.HMACPassed, nil)
	report("AES-128-CTR", post.CipherPassed, nil)
	report("DH group", post.DHPassed, nil)
	for _, e := range post.Errors {
		logger.Error("POST failure", metrics.Fields{"error": e})
	}

	fmt.Fprintln(out, "Conditional self-tests:")
	rng := crypto.RNGHealthCheck(engine)
	report("RNG health", rng.Passed, rng.Error)

	if pairwise {
		dh, err := engine.GenerateKeyAgreementKeyPair()
		if err != nil {
			report("DH pairwise consistency", false, err)
		} else {
			res := crypto.PairwiseConsistencyTestKeyAgreement(engine, dh)
			report("DH pairwise consistency", res.Passed, res.Error)
			dh.Zeroize()
		}

		dsa, err := engine.GenerateSigningKeyPair()
		if err != nil {
			report("DSA pairwise consistency", false, err)
		} else {
			res := crypto.PairwiseConsistencyTestSigning(engine, dsa)
			report("DSA pairwise consistency", res.Passed, res.Error)
			dsa.Zeroize()
		}
	}

	if failed {
		return errSelfTestFailed
	}
	fmt.Fprintln(out, "All self-tests passed")
	return nil
}
