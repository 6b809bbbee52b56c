// Command enginectl boots the engine runtime from a manifest: it opens an
// async I/O port, loads input layers, builds and finalizes a config blob,
// reads a packed hailstorm resource cluster, and starts the scheduler's
// task queues, logging progress the way the runtime itself would.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberforge/ember/pkg/log"
	"github.com/emberforge/ember/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "enginectl",
	Short:   "enginectl bootstraps and runs the engine runtime from a manifest",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("enginectl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")
	rootCmd.PersistentFlags().Int("threadpool-size", 4, "task-pool worker count, clamped to [2, 8]")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Severity(level), JSONOutput: jsonOut})
}

var runCmd = &cobra.Command{
	Use:   "run -f MANIFEST",
	Short: "Run the engine runtime from a bootstrap manifest",
	RunE:  runRuntime,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "bootstrap manifest YAML file (required)")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "address to serve /metrics and health endpoints on")
	_ = runCmd.MarkFlagRequired("file")
}

func runRuntime(cmd *cobra.Command, args []string) error {
	logger := log.With("enginectl")

	filename, _ := cmd.Flags().GetString("file")
	poolSize, _ := cmd.Root().PersistentFlags().GetInt("threadpool-size")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	manifest, err := parseManifest(data)
	if err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	rt, err := bootstrap(manifest, poolSize)
	if err != nil {
		return fmt.Errorf("bootstrapping runtime: %w", err)
	}
	defer rt.shutdown()

	metrics.RegisterComponent("ecs", true, "ready")
	metrics.RegisterComponent("aio", true, "ready")
	metrics.RegisterComponent("scheduler", true, fmt.Sprintf("%d task-pool workers", rt.scheduler.PoolSize()))

	go func() {
		http.Handle("/metrics", metrics.Handler())
		http.Handle("/health", metrics.HealthHandler())
		http.Handle("/ready", metrics.ReadyHandler())
		http.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			logger.Error(err, "metrics server exited", nil)
		}
	}()
	logger.Info("engine runtime started", log.Fields{
		"manifest":    filename,
		"pool_size":   rt.scheduler.PoolSize(),
		"metricsAddr": metricsAddr,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down", nil)
	return nil
}
