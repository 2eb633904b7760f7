package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/racesync/internal/factory"
	"github.com/mcoot/racesync/internal/session"
	"github.com/mcoot/racesync/internal/view"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect to the racing server",
		Long: `Connect to the racing server and stay in sync until interrupted.

Lines typed on stdin are sent as chat input, with the same commands as the
game client (/pm, /r, /floor, /checkpoint, ...). /restart reconnects with a
fresh session. While connected, the mod socket relays race values to the
game and the status API serves the mirrored state.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return connect(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func connect(ctx context.Context, in io.Reader, out io.Writer) error {
	fc, err := cfg.FactoryConfig(logger)
	if err != nil {
		return err
	}
	fc.Renderer = view.NewText(out, cfg.Output)

	var current atomic.Pointer[session.Session]
	go readInput(in, &current)

	for {
		restart := make(chan struct{}, 1)
		fc.OnRestart = func() {
			select {
			case restart <- struct{}{}:
			default:
			}
		}

		app, err := factory.New(fc)
		if err != nil {
			return err
		}
		current.Store(app.Session)

		runCtx, cancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-restart:
				logger.Info("restarting session")
				cancel()
			case <-runCtx.Done():
			}
		}()

		err = app.Run(runCtx)
		restarted := runCtx.Err() != nil && ctx.Err() == nil
		cancel()
		current.Store(nil)
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("closing storage failed", slog.Any("error", closeErr))
		}

		switch {
		case ctx.Err() != nil:
			return nil
		case restarted:
			continue
		case err != nil:
			return err
		default:
			return errors.New("connection to the server ended")
		}
	}
}

func readInput(in io.Reader, current *atomic.Pointer[session.Session]) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		sess := current.Load()
		if sess == nil {
			logger.Debug("input dropped, no session")
			continue
		}
		sess.SubmitInput(scanner.Text())
	}
}
