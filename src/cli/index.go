// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/config"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

type buildOptions struct {
	bundle    string
	prune     bool
	sha256    string
	signature string
	keyring   string
}

func newBuildIndexCommand(global *globalOptions, log logger.Logger) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Build the local CA trust index from a PEM bundle",
		Long: `Reads every certificate of the CA bundle and stores it in the trust index under
its subject key identifier, or its subject DN when it has none. The bundle is
decoded completely before anything is written, so a broken bundle leaves the
index untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("prune") {
				opts.prune = cfg.TrustIndex.Prune
			}

			bundle, err := trustindex.ReadBundle(opts.source(cfg))
			if err != nil {
				return err
			}
			log.Printf("Read CA bundle %s", bundle.Path)
			if bundle.Signer != "" {
				log.Printf("Bundle signature verified, signed by %s", bundle.Signer)
			}

			idx := cfg.OpenIndex()
			builder := trustindex.NewBuilder(idx, log)
			builder.Prune = opts.prune
			result, err := builder.Build(cmd.Context(), bundle.Data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d certificates into %s (%d by key identifier, %d by subject DN, %d written, %d pruned)\n",
				len(result.Keys), idx.Dir(), result.BySKID, result.ByDN, result.Written, result.Pruned)
			if result.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d certificates without subject key identifier or subject DN\n", result.Skipped)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.bundle, "bundle", "", "CA bundle (default: $SSL_CERT_FILE or the platform bundle)")
	flags.BoolVar(&opts.prune, "prune", false, "remove index entries that are not in the bundle")
	flags.StringVar(&opts.sha256, "sha256", "", "expected SHA-256 of the bundle (hex, colons allowed)")
	flags.StringVar(&opts.signature, "signature", "", "detached OpenPGP signature of the bundle")
	flags.StringVar(&opts.keyring, "keyring", "", "OpenPGP public keyring that must have signed the bundle")
	return cmd
}

// source fills unset flags from configuration.
func (o *buildOptions) source(cfg *config.Config) trustindex.BundleSource {
	src := trustindex.BundleSource{
		Path:      o.bundle,
		SHA256:    o.sha256,
		Signature: o.signature,
		Keyring:   o.keyring,
	}
	if src.Path == "" {
		src.Path = cfg.TrustIndex.Bundle
	}
	if src.SHA256 == "" {
		src.SHA256 = cfg.TrustIndex.SHA256
	}
	if src.Signature == "" && src.Keyring == "" {
		src.Signature, src.Keyring = cfg.TrustIndex.Signature, cfg.TrustIndex.Keyring
	}
	return src
}

func newLookupCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup KEY",
		Short: "Print the trust index entry stored under KEY",
		Long: `KEY is a normalized identifier: a subject key identifier such as
AB:CD:..., or a serialized subject DN such as C=US+++O=Example+++CN=Root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			idx := cfg.OpenIndex()
			if !idx.Exists() {
				return fmt.Errorf("%w: %s", x509chain.ErrIndexMissing, idx.Dir())
			}

			data, err := idx.Get(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
