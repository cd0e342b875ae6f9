package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/wire"
)

func keygenCmd() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair and print its public encoding and fingerprint",
		Long: `Generate a DSA identity key pair (--type dsa, the default) or an
ephemeral DH key pair (--type dh). The public key is printed in OTR wire
encoding as hex, followed by its fingerprint. The private key is not
printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var (
				pub     crypto.PublicKey
				encoded []byte
				err     error
			)
			switch keyType {
			case "dsa":
				logger.Info("generating DSA parameters, this can take a few seconds")
				kp, genErr := engine.GenerateSigningKeyPair()
				if genErr != nil {
					return genErr
				}
				defer kp.Zeroize()
				pub = kp.Public
				encoded, err = wire.MarshalDSAPublicKey(kp.Public.DSA())
			case "dh":
				kp, genErr := engine.GenerateKeyAgreementKeyPair()
				if genErr != nil {
					return genErr
				}
				defer kp.Zeroize()
				pub = kp.Public
				encoded, err = wire.MarshalMPI(kp.Public.Y())
			default:
				return fmt.Errorf("unknown key type %q (want dsa or dh)", keyType)
			}
			if err != nil {
				return err
			}

			fp, err := engine.FingerprintHex(pub)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "type:        %s\n", pub.Kind())
			fmt.Fprintf(out, "public:      %s\n", hex.EncodeToString(encoded))
			fmt.Fprintf(out, "fingerprint: %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyType, "type", "dsa", "key type: dsa or dh")
	return cmd
}
