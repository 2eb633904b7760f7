package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/command"
	"github.com/mcoot/racesync/internal/services/room"
	"github.com/mcoot/racesync/internal/transport/ws"
)

// ParsedCommand is what a line of input would send to the server
type ParsedCommand struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

type parseOptions struct {
	raceID int
	online []string
	lastPM string
}

func newParseCmd() *cobra.Command {
	opts := parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <input>",
		Short: "Show the command a line of chat input turns into",
		Long: `Run the chat command grammar offline and print the resulting server
command, without connecting. Rejected input prints its usage hint.

Examples:
  racesync parse "/pm alice hello there" --online Alice
  racesync parse "/floor 3 0" --race 12`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseInput(strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(parsed)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.raceID, "race", int(model.NoRace), "Parse as if on the screen of this race")
	cmd.Flags().StringSliceVar(&opts.online, "online", nil, "Users online in the lobby")
	cmd.Flags().StringVar(&opts.lastPM, "last-pm", "", "Sender of the last private message, for /r")

	return cmd
}

func parseInput(input string, opts parseOptions) (ParsedCommand, error) {
	state := model.NewSessionState(cfg.DevMode)
	state.Username = cfg.Username
	state.LastPM = opts.lastPM
	state.Screen = model.ScreenLobby
	if opts.raceID != int(model.NoRace) {
		state.CurrentRaceID = model.RaceID(opts.raceID)
		state.Screen = model.ScreenRace
	}

	users := make([]model.User, len(opts.online))
	for i, name := range opts.online {
		users[i] = model.User{Name: name}
	}
	rooms := room.New(logger)
	rooms.SetRoom(model.LobbyRoom(), users)
	if state.InRace() {
		rooms.SetRoom(model.RaceRoom(state.CurrentRaceID), users)
	}

	parsed, err := command.NewParser(state, rooms, logger).Parse(input, state.CurrentRoom())
	if err != nil {
		return ParsedCommand{}, err
	}

	frame, err := ws.EncodeCommand(parsed)
	if err != nil {
		return ParsedCommand{}, err
	}
	name, payload, err := ws.DecodeFrame(frame)
	if err != nil {
		return ParsedCommand{}, err
	}
	return ParsedCommand{Name: name, Payload: payload}, nil
}
