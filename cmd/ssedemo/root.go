package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/ssebridge"
	"github.com/kbukum/ssebridge/config"
	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
	"github.com/kbukum/ssebridge/version"
)

const (
	appName      = "ssedemo"
	pollInterval = 50 * time.Millisecond
)

type flags struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCommand(out io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          appName + " <url>",
		Short:        "Print the events of a Server-Sent Events stream",
		Args:         cobra.ExactArgs(1),
		Version:      version.Full(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			cfg.URL = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, out)
		},
	}

	cmd.AddCommand(newServeCommand())

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "config file (default: search ./ssedemo.yml, ./config.yml)")
	cmd.Flags().StringVar(&f.envFile, "env-file", "", ".env file to load")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	return cmd
}

func loadConfig(f flags) (*config.ClientConfig, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}

	var cfg config.ClientConfig
	if err := config.Load(appName, &cfg, opts...); err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// run connects and prints events until ctx is cancelled or the stream is
// closed for good.
func run(ctx context.Context, cfg *config.ClientConfig, out io.Writer) error {
	logger.Init(cfg.Log)
	log := logger.WithComponent(appName)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, ssebridge.WithLogger(logger.Get("ssebridge")))

	if cfg.Telemetry.Enabled() {
		metrics, shutdown, err := initTelemetry(ctx, cfg.Telemetry)
		if err != nil {
			return err
		}
		defer shutdown()
		opts = append(opts, ssebridge.WithMetrics(metrics))
	}

	wake := make(chan struct{}, 1)
	rx, err := ssebridge.ConnectWithWakeup(cfg.URL, func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}, opts...)
	if err != nil {
		return err
	}
	defer rx.Close()

	log.Info("subscribed", logger.Fields(logger.FieldURL, cfg.URL, logger.FieldConnectionID, rx.ID()))

	// the wake-up fires just before an event is queued, so a slow tick
	// picks up anything that landed after the last drain
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		for {
			ev, ok := rx.TryRecv()
			if !ok {
				break
			}
			fmt.Fprintf(out, "Received %s\n", ev)
			if ev.Kind == ssebridge.KindClosed {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-wake:
		case <-tick.C:
		}
	}
}

func initTelemetry(ctx context.Context, tc config.TelemetryConfig) (*observability.Metrics, func(), error) {
	tel, err := observability.Setup(ctx, tc.Observability())
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry.shutdown", err))
		}
	}
	return tel.Metrics, shutdown, nil
}
