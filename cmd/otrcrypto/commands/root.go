package commands

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/internal/constants"
	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/metrics"
)

var (
	logLevel  string
	logFormat string
	tracing   string

	logger    *metrics.Logger
	collector *metrics.Collector
	tracer    metrics.Tracer
	engine    *crypto.Engine
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "otrcrypto",
		Short:        "OTR cryptographic primitives: self-test, keys, fingerprints, benchmarks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error, silent")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&tracing, "tracing", "none", "tracing mode: none, simple, otel (requires -tags otel)")

	root.AddCommand(
		versionCmd(),
		selftestCmd(),
		keygenCmd(),
		fingerprintCmd(),
		benchCmd(),
		serveCmd(),
	)
	return root
}

func setup(cmd *cobra.Command) error {
	errOut := cmd.ErrOrStderr()
	color := false
	if f, ok := errOut.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}

	level, err := metrics.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format, err := metrics.ParseFormat(logFormat)
	if err != nil {
		return err
	}

	logger = metrics.NewLogger(
		metrics.WithOutput(errOut),
		metrics.WithLevel(level),
		metrics.WithFormat(format),
		metrics.WithColor(color),
		metrics.WithName(constants.LibraryName),
	)
	metrics.SetLogger(logger)

	switch tracing {
	case "none", "":
		tracer = metrics.NoOpTracer{}
	case "simple":
		tracer = metrics.NewSimpleTracer(0)
	case "otel":
		if !metrics.OTelEnabled() {
			logger.Warn("OpenTelemetry support not built in; rebuild with -tags otel")
		}
		tracer = metrics.NewOTelTracer(constants.LibraryName)
	default:
		return fmt.Errorf("unknown tracing mode %q", tracing)
	}
	metrics.SetTracer(tracer)

	collector = metrics.NewCollector(metrics.Labels{"instance": "cli"})
	metrics.SetGlobal(collector)

	obs := metrics.NewCryptoObserver(collector, logger, tracer, metrics.WithFIPSMode(crypto.FIPSMode()))
	engine = crypto.NewEngine(crypto.WithObserver(obs))

	logger.Debug("engine ready", metrics.Fields{
		"fips":        crypto.FIPSMode(),
		"post_passed": crypto.POSTPassed(),
		"tracing":     tracing,
	})
	return nil
}
