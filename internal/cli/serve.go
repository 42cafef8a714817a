package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/interposehq/interpose/internal/broker"
	"github.com/interposehq/interpose/internal/httpproxy"
)

// NewServeCommand creates the serve command, which exposes a broker as
// an HTTP proxy.
//
// Every flag can also be supplied through the environment with the
// INTERPOSE_ prefix (INTERPOSE_CASSETTE, INTERPOSE_MODE, ...); flags
// win when both are set.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a cassette as an HTTP proxy",
		Long: `Run an HTTP proxy backed by a broker.

In replay mode every proxied request must match a recorded interaction;
a miss returns 404. In record and auto mode, misses (and in record
mode, hits too) are forwarded to the real upstream and the response is
recorded to the cassette before it is returned.

Examples:
  interpose serve --cassette testdata/users.json
  interpose serve --cassette recordings.yaml --mode auto --listen :8080
  INTERPOSE_MODE=record interpose serve --cassette recordings.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, v, cmd)
		},
	}

	cmd.Flags().String("cassette", "", "path to the cassette (required)")
	cmd.Flags().String("store", "", "store kind (json|yaml|sqlite); inferred from extension when omitted")
	cmd.Flags().String("mode", "replay", "broker mode (replay|record|auto)")
	cmd.Flags().String("listen", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringSlice("match-header", nil, "request header to include in matching (repeatable)")

	v.SetEnvPrefix("INTERPOSE")
	v.AutomaticEnv()
	_ = v.BindPFlag("cassette", cmd.Flags().Lookup("cassette"))
	_ = v.BindPFlag("store", cmd.Flags().Lookup("store"))
	_ = v.BindPFlag("mode", cmd.Flags().Lookup("mode"))
	_ = v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag("match-header", cmd.Flags().Lookup("match-header"))

	return cmd
}

func runServe(opts *RootOptions, v *viper.Viper, cmd *cobra.Command) error {
	cassettePath := v.GetString("cassette")
	if cassettePath == "" {
		return NewExitError(ExitCommandError, "--cassette is required (or INTERPOSE_CASSETTE)")
	}

	mode, err := broker.ParseMode(v.GetString("mode"))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mode", err)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// Recording modes tolerate a missing snapshot; replay demands one.
	createIfMissing := mode != broker.ModeReplay
	store, closeStore, err := openStore(cassettePath, v.GetString("store"), createIfMissing)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cassette, err := store.Load(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load cassette", err)
	}

	brokerOpts := []broker.Option{broker.WithMode(mode)}
	if mode != broker.ModeReplay {
		brokerOpts = append(brokerOpts,
			broker.WithLiveResponder(httpproxy.NewHTTPResponder(nil)),
			broker.WithStore(store),
		)
	}
	b := broker.New(cassette, brokerOpts...)

	handler := httpproxy.NewHandler(b,
		httpproxy.WithLogger(logger),
		httpproxy.WithMatchHeaders(v.GetStringSlice("match-header")...),
	)

	server := &http.Server{
		Addr:              v.GetString("listen"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("proxy listening",
		"addr", server.Addr,
		"cassette", cassettePath,
		"mode", mode.String(),
		"interactions", cassette.Len(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "proxy server failed", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitCommandError, "proxy shutdown failed", err)
		}
	}
	return nil
}
