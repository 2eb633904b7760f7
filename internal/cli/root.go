package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "racesync",
		Short: "Headless client for the Isaac racing server",
		Long: `racesync connects to the racing server, keeps the lobby, chat and race
state in sync, and relays race values to the game mod over a local socket.

A read-only status API exposes the mirrored state while connected.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = cfg.NewLogger()
			slog.SetDefault(logger)

			client = NewClient(cfg.StatusURL())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Websocket URL (env: RACESYNC_SERVER)")
	flags.StringVar(&cfg.Cookie, "cookie", cfg.Cookie, "Session cookie for the handshake (env: RACESYNC_COOKIE)")
	flags.StringVar(&cfg.ModAddr, "mod-addr", cfg.ModAddr, "Mod socket listen address, empty to disable (env: RACESYNC_MOD_ADDR)")
	flags.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "Status API address, empty to disable (env: RACESYNC_STATUS_ADDR)")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Snapshot storage: memory, redis (env: RACESYNC_STORAGE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (env: REDIS_URL)")
	flags.BoolVar(&cfg.DevMode, "dev", cfg.DevMode, "Development mode (env: RACESYNC_DEV)")
	flags.StringVar(&cfg.Username, "username", cfg.Username, "Username used when running offline (env: RACESYNC_USERNAME)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json, text")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
