package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	client "github.com/stockroom/stockroom-client"
	"github.com/stockroom/stockroom-client/internal/config"
	"github.com/stockroom/stockroom-client/internal/logger"
)

var (
	baseURL   string
	sessionDB string
	debug     bool
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "Command-line client for the Stockroom backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = logger.NewWithWriter("stockctl", cmd.ErrOrStderr())
			cfg, err := rawConfig()
			if err != nil {
				return err
			}
			if cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(logger.Level(cfg.LogLevel))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (default $STOCKROOM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionDB, "session-db", "", "Session database path (default $STOCKROOM_SESSION_DB or ~/.stockroom/session.db)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Log HTTP traffic")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newOptionsCmd())
	rootCmd.AddCommand(newProductsCmd())
	rootCmd.AddCommand(newCustomersCmd())
	rootCmd.AddCommand(newSuppliersCmd())
	rootCmd.AddCommand(newOrdersCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newMockServerCmd())
	return rootCmd
}

// rawConfig reads the environment and applies flag overrides without
// validating.
func rawConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if sessionDB != "" {
		cfg.SessionDB = sessionDB
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// loadConfig is rawConfig followed by validation, so a flag can replace a
// bad environment value.
func loadConfig() (*config.Config, error) {
	cfg, err := rawConfig()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// openClient builds a client and restores the persisted session. When
// requireSession is set a missing session is an error.
func openClient(cmd *cobra.Command, requireSession bool) (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := client.NewFromConfig(cfg, client.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}
	ok, err := c.Restore(cmd.Context())
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if requireSession && !ok {
		_ = c.Close()
		return nil, fmt.Errorf("not logged in; run `stockctl login` first")
	}
	c.OnLogout(func(_ context.Context, ev client.SessionEvent) {
		if ev.Expired {
			fmt.Fprintln(cmd.ErrOrStderr(), "session expired; run `stockctl login` again")
		}
	})
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
