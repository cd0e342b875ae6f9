package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/wire"
)

func fingerprintCmd() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "fingerprint <hex>",
		Short: "Print the fingerprint of a wire-encoded public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}

			pub, err := parsePublicKey(keyType, raw)
			if err != nil {
				return err
			}

			fp, err := engine.FingerprintHex(pub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyType, "type", "dsa", "key type: dsa or dh")
	return cmd
}

func parsePublicKey(keyType string, raw []byte) (crypto.PublicKey, error) {
	switch keyType {
	case "dsa":
		k, err := wire.ParseDSAPublicKey(raw)
		if err != nil {
			return nil, err
		}
		return crypto.NewSigningPublicKey(k.P, k.Q, k.G, k.Y)
	case "dh":
		y, err := wire.ParseMPI(raw)
		if err != nil {
			return nil, err
		}
		return engine.KeyAgreementPublicKeyFromInt(y)
	default:
		return nil, fmt.Errorf("unknown key type %q (want dsa or dh)", keyType)
	}
}
