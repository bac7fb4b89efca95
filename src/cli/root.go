// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/config"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/helper/posix"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

// ErrTargetRequired is returned when no target host is given.
var ErrTargetRequired = errors.New("cli: target host is required")

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	indexDir   string
}

// load reads the configuration and applies the --index override.
func (g *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.indexDir != "" {
		cfg.TrustIndex.Dir = g.indexDir
	}
	return cfg, nil
}

type inspectOptions struct {
	serverName string
	json       bool
	cert       bool
	table      bool
	tree       bool
	timeout    time.Duration
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewRootCommand(version, log).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. The root command inspects a
// target; build-index and lookup manage the trust index.
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.NewCLILogger()
	}
	exe := posix.GetExecutableName()
	global := &globalOptions{}
	opts := &inspectOptions{}

	rootCmd := &cobra.Command{
		Use:   exe + " [flags] TARGET",
		Short: "Inspect the certificate chain a TLS server presents against a local trust index",
		Long: `Connects to TARGET (host, host:port or URL), records the verification result of
every certificate the server presents and reports which of them are in the local
CA trust index. When the server withholds its root, the root is completed from the
index using the issuer of the last certificate.`,
		Example: fmt.Sprintf(`  %[1]s build-index
  %[1]s example.com
  %[1]s -s www.example.com 203.0.113.7:8443
  %[1]s --json https://example.com/path`, exe),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return ErrTargetRequired
			case 1:
				return nil
			}
			return fmt.Errorf("cli: expected one target, got %d", len(args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), global, opts, args[0], log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "configuration file (.json, .yaml, .yml)")
	rootCmd.PersistentFlags().StringVar(&global.indexDir, "index", "", "trust index directory (overrides configuration)")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.serverName, "servername", "s", "", "TLS server name (SNI), defaults to the target host")
	flags.BoolVarP(&opts.json, "json", "j", false, "print the report as JSON")
	flags.BoolVarP(&opts.cert, "cert", "c", false, "include certificates in the text report")
	flags.BoolVar(&opts.table, "table", false, "print the report as a markdown table")
	flags.BoolVarP(&opts.tree, "tree", "t", false, "print the report as an ASCII tree")
	flags.DurationVar(&opts.timeout, "timeout", 0, "connect and handshake timeout (overrides configuration)")
	rootCmd.MarkFlagsMutuallyExclusive("json", "table", "tree")

	rootCmd.AddCommand(
		newBuildIndexCommand(global, log),
		newLookupCommand(global),
	)
	return rootCmd
}

func runInspect(ctx context.Context, out io.Writer, global *globalOptions, opts *inspectOptions, input string, log logger.Logger) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	target, err := x509chain.ParseTarget(input, opts.serverName)
	if err != nil {
		return err
	}

	inspector := x509chain.NewInspector(cfg.OpenIndex(), log)
	inspector.Timeout = cfg.Timeout()
	if opts.timeout > 0 {
		inspector.Timeout = opts.timeout
	}
	inspector.MaxDepth = cfg.Inspect.MaxDepth

	report, err := inspector.Inspect(ctx, target)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case opts.table:
		_, err = io.WriteString(out, report.RenderTable())
	case opts.tree:
		_, err = io.WriteString(out, report.RenderASCIITree())
	default:
		_, err = io.WriteString(out, report.RenderText(opts.cert))
	}
	return err
}
