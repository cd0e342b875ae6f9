package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pzverkov/otrcrypto/pkg/crypto"
	"github.com/pzverkov/otrcrypto/pkg/metrics"
)

func serveCmd() *cobra.Command {
	var (
		addr           string
		processMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Prometheus metrics and health endpoints",
		Long: `Expose /metrics, /health, /healthz and /readyz. Health includes the
power-on self-test result and a live RNG health check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if processMetrics {
				if err := collector.RegisterProcessMetrics(); err != nil {
					return err
				}
			}

			server := metrics.NewServer(metrics.ServerConfig{
				Collector:        collector,
				Version:          getVersion(),
				EnablePrometheus: true,
				EnableHealth:     true,
			})
			server.AddHealthCheck("post", func() error {
				if !crypto.POSTPassed() {
					return fmt.Errorf("power-on self-test failed: %v", crypto.RunPOST().Errors)
				}
				return nil
			})
			server.AddHealthCheck("rng", func() error {
				return crypto.RNGHealthCheck(engine).Error
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("observability server listening", metrics.Fields{"addr": addr})
			return server.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "listen address")
	cmd.Flags().BoolVar(&processMetrics, "process-metrics", true, "export Go runtime and process metrics")
	return cmd
}

