package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kbukum/ssebridge/internal/ssehub"
	"github.com/kbukum/ssebridge/logger"
)

type serveFlags struct {
	addr      string
	path      string
	interval  time.Duration
	keepAlive time.Duration
	logLevel  string
}

// newServeCommand runs a local stream that publishes a numbered tick, handy
// for trying the client without an external server.
func newServeCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo event stream that ticks at a fixed interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := logger.Config{Level: f.logLevel}
			cfg.ApplyDefaults()
			logger.Init(cfg)
			return serve(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&f.path, "path", "/events", "stream path")
	cmd.Flags().DurationVar(&f.interval, "interval", time.Second, "tick interval")
	cmd.Flags().DurationVar(&f.keepAlive, "keep-alive", 15*time.Second, "keep-alive comment interval")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level")
	return cmd
}

func serve(ctx context.Context, f serveFlags) error {
	log := logger.WithComponent("ssedemo.serve")
	hub := ssehub.New(ssehub.WithKeepAlive(f.keepAlive))
	go hub.Run()
	defer hub.Stop()

	if f.logLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              f.addr,
		Handler:           ssehub.NewRouter(hub, f.path),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("serving events", logger.Fields("addr", f.addr, "path", f.path))

	tick := time.NewTicker(f.interval)
	defer tick.Stop()

	for n := 1; ; {
		select {
		case <-ctx.Done():
			hub.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-tick.C:
			hub.Publish(ssehub.Frame{ID: strconv.Itoa(n), Event: "tick", Data: fmt.Sprintf("tick %d", n)})
			n++
		}
	}
}
