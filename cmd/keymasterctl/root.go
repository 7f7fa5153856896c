package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/UOS-By-Uteam/platform-system-keymaster/internal/config"
	internalmetrics "github.com/UOS-By-Uteam/platform-system-keymaster/internal/metrics"
	adaptermetrics "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/logger"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/correlation"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keymaster"
)

var (
	configPath     string
	rootOfTrustHex string
	outputFormat   string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:           "keymasterctl",
	Short:         "Device-local key management command line interface",
	Long:          "keymasterctl drives a keymaster.Service instance: generate and import keys, run begin/update/finish operations, and inspect the algorithm surface it supports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a keymasterctl YAML config file")
	rootCmd.PersistentFlags().StringVar(&rootOfTrustHex, "root-of-trust", "", "hex-encoded root-of-trust secret (overrides the config file's root_of_trust_file)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print verbose diagnostic output to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(cryptoCmd)
	rootCmd.AddCommand(entropyCmd)
	rootCmd.AddCommand(supportedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

func printer() *Printer {
	return NewPrinter(outputFormat, os.Stdout)
}

func handleError(err error) error {
	_ = printer().PrintError(err)
	return err
}

// resolveRootOfTrust returns the root-of-trust secret a service should
// derive its master key from: the --root-of-trust flag takes precedence
// over the config file's root_of_trust_file, and an empty result is valid
// (blob.DeriveMasterKey tolerates an empty root).
func resolveRootOfTrust(cfg *config.Config) ([]byte, error) {
	if rootOfTrustHex != "" {
		b, err := hex.DecodeString(rootOfTrustHex)
		if err != nil {
			return nil, fmt.Errorf("invalid --root-of-trust hex: %w", err)
		}
		return b, nil
	}
	if cfg.RootOfTrustFile != "" {
		b, err := os.ReadFile(cfg.RootOfTrustFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read root_of_trust_file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

// session bundles the constructed service plus the ambient adapters every
// subcommand wraps its calls with. ctx carries this invocation's correlation
// ID and metrics adapter, so every Service call and every context-aware log
// line made through this session ties back to the same call.
type session struct {
	service *keymaster.Service
	log     logger.Logger
	metrics adaptermetrics.Adapter
	cfg     *config.Config
	ctx     context.Context
}

func newSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	rootOfTrust, err := resolveRootOfTrust(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	}
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	log := logger.NewSlogAdapter(&logger.SlogConfig{Handler: handler, Level: level})

	var metricsAdapter adaptermetrics.Adapter = adaptermetrics.NewNoOp()
	if cfg.Metrics.Enabled {
		metricsAdapter = internalmetrics.NewCollector(prometheus.DefaultRegisterer)
	}

	svc := keymaster.New(rootOfTrust, nil, cfg.OperationTableCapacity)
	printVerbose("service initialized: operation_table_capacity=%d metrics=%v", cfg.OperationTableCapacity, cfg.Metrics.Enabled)

	ctx := adaptermetrics.WithAdapter(context.Background(), metricsAdapter)
	ctx, correlationID := correlation.FromContextOrNew(ctx)
	printVerbose("correlation_id=%s", correlationID)

	return &session{service: svc, log: log, metrics: metricsAdapter, cfg: cfg, ctx: ctx}, nil
}

func slogLevel(l logger.Level) slog.Level {
	switch l {
	case logger.LevelDebug:
		return slog.LevelDebug
	case logger.LevelWarn:
		return slog.LevelWarn
	case logger.LevelError, logger.LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print keymasterctl's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printer().PrintSuccess("keymasterctl dev")
	},
}
