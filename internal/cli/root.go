// Package cli implements the mission-control commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/mission-control/internal/app"
	"github.com/p-blackswan/mission-control/internal/config"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mission-control",
	Short: "Boards for tasks, content, calendar and memories",
	Long:  "Mission Control keeps task, content and calendar boards plus agent memories, served over HTTP and MCP. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $DB_PATH or mission-control.db)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openApp loads config, builds the app and restores every collection.
func openApp(cmd *cobra.Command, logOut io.Writer) (*app.App, zerolog.Logger) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	logger := app.NewLogger(cfg, logOut)

	a, err := app.New(cfg, logger)
	if err != nil {
		exitErr("open app", err)
	}
	if err := a.Load(cmd.Context()); err != nil {
		logger.Warn().Err(err).Msg("some collections started empty")
	}
	return a, logger
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
