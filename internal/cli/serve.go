package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/mirror"
	"github.com/roach88/crease/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	MatchID string
	Listen  string
	Relay   bool // forward frames published by other scorers
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a match over HTTP and websocket",
		Long: `Start the scoring server.

With --match, scoring commands POSTed to /matches/{id}/commands run through
a single-writer command loop. Every accepted command is stored, pushed to
websocket spectators on /ws and, when CREASE_REDIS_ADDR is set, published
to redis. With --relay, frames published by other scorers are forwarded to
this server's spectators.

Examples:
  crease serve --db ./crease.db --match final-2024
  crease serve --listen :9090 --relay`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match to score (default $CREASE_MATCH_ID; none serves read-only)")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default $CREASE_LISTEN_ADDR or :8080)")
	cmd.Flags().BoolVar(&opts.Relay, "relay", false, "forward frames from the redis mirror to spectators")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	hub := mirror.NewHub()
	var publisher *mirror.Publisher
	var subscriber *mirror.Subscriber
	if opts.Env.MirrorEnabled() {
		client, err := mirror.NewRedisClient(ctx, mirror.RedisConfig{Addr: opts.Env.RedisAddr, Channel: opts.Env.MirrorChannel})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect to redis", err)
		}
		defer client.Close()
		publisher = mirror.NewPublisher(client, opts.Env.MirrorChannel)
		subscriber = mirror.NewSubscriber(client, opts.Env.MirrorChannel)
	} else if opts.Relay {
		return NewExitError(ExitCommandError, "--relay needs CREASE_REDIS_ADDR")
	}

	var srvOpts []server.Option
	matchID := opts.MatchID
	if matchID == "" {
		matchID = opts.Env.MatchID
	}
	loopDone := make(chan error, 1)
	if matchID != "" {
		eng, err := restoreEngine(ctx, st, matchID)
		if err != nil {
			return err
		}
		sinks := []engine.Sink{st.Recorder(eng), hub}
		if publisher != nil {
			sinks = append(sinks, publisher)
		}
		loop := engine.NewLoop(eng, sinks...)
		go func() { loopDone <- loop.Run(ctx) }()
		srvOpts = append(srvOpts, server.WithLoop(matchID, loop), server.WithCommandTimeout(opts.Env.WriteTimeout))
	} else {
		loopDone <- nil
	}

	if opts.Relay {
		go func() {
			if err := mirror.Relay(ctx, subscriber, hub, nil); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("mirror relay stopped", "error", err)
			}
		}()
	}

	listen := opts.Listen
	if listen == "" {
		listen = opts.Env.ListenAddr
	}
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.New(st, hub, srvOpts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.ListenAndServe() }()

	slog.Info("server starting", "addr", listen, "match_id", matchID, "relay", opts.Relay, "mirror", publisher != nil)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", listen)

	select {
	case err := <-serveErr:
		cancel()
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
	}

	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "command loop error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
