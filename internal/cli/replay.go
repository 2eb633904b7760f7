package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/racesync/internal/api/response"
	"github.com/mcoot/racesync/internal/factory"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/services/modbridge"
	"github.com/mcoot/racesync/internal/transport/ws"
	"github.com/mcoot/racesync/internal/view"
)

// inputPrefix marks a replay line as typed input rather than a server event
const inputPrefix = "> "

// ReplayResult is the state left behind by a replay
type ReplayResult struct {
	Session  response.Session `json:"session"`
	Races    []response.Race  `json:"races"`
	ModLines []string         `json:"mod_lines"`
}

func newReplayCmd() *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Feed captured server traffic through a session offline",
		Long: `Replay a file of server frames ("<event> <json>", one per line) through a
session without a network connection, then print the resulting state.

Lines starting with "> " are typed as chat input. Blank lines and lines
starting with "#" are skipped. Use "-" to read from stdin. Rendered output
goes to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			result, err := replay(cmd.Context(), in, cmd.ErrOrStderr(), settle)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 4*gate.FadeTime, "How long to let timers run after the last line")

	return cmd
}

func replay(ctx context.Context, in io.Reader, rendered io.Writer, settle time.Duration) (ReplayResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mod := modbridge.NewLineLog()
	app, err := factory.New(factory.Config{
		Logger:   logger,
		DevMode:  cfg.DevMode,
		Renderer: view.NewText(rendered, cfg.Output),
		Mod:      mod,
	})
	if err != nil {
		return ReplayResult{}, err
	}

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	if err := feed(app, in); err != nil {
		cancel()
		<-done
		return ReplayResult{}, err
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
	}

	snap, err := app.Session.ReadSnapshot(ctx)
	cancel()
	if runErr := <-done; runErr != nil && err == nil {
		err = runErr
	}
	if err != nil {
		return ReplayResult{}, err
	}

	result := ReplayResult{
		Session:  response.SessionFromModel(snap),
		Races:    make([]response.Race, len(snap.Races)),
		ModLines: mod.Lines(),
	}
	for i, race := range snap.Races {
		result.Races[i] = response.RaceFromModel(race)
	}
	return result, nil
}

func feed(app *factory.App, in io.Reader) error {
	if cfg.Username != "" {
		settings, err := json.Marshal(model.SettingsPayload{Username: cfg.Username})
		if err != nil {
			return err
		}
		app.Session.HandleEvent(model.EventSettings, settings)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(scanner.Text(), inputPrefix):
			app.Session.SubmitInput(strings.TrimPrefix(scanner.Text(), inputPrefix))
			continue
		}

		name, payload, err := ws.DecodeFrame([]byte(line))
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		app.Session.HandleEvent(name, payload)
	}
	return scanner.Err()
}
