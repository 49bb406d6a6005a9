// Command trackctl inspects a workflow tracking directory: it lists instance
// logs, prints their history and definitions, follows live writes and
// queries the configured record index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petrijr/wftrack/internal/config"
	"github.com/petrijr/wftrack/internal/logging"
	"github.com/petrijr/wftrack/internal/query"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// app carries state shared by every subcommand. It is filled by the root
// command's PersistentPreRunE.
type app struct {
	v          *viper.Viper
	configFile string

	cfg    *config.Config
	logger *slog.Logger
	query  *query.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "trackctl",
		Short:         "Inspect workflow tracking logs",
		Long:          "trackctl reads the per-instance tracking logs written by the tracking service and the record index mirroring them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default: .wftrack.yaml)")
	cmd.PersistentFlags().StringP("dir", "d", "", "tracking log directory (overrides log_location)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "auto", "log format (auto, text, json)")

	_ = a.v.BindPFlag("log_location", cmd.PersistentFlags().Lookup("dir"))
	_ = a.v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newDefinitionCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newIndexCmd(a))
	return cmd
}

func (a *app) load() error {
	cfg, err := config.NewLoaderWithViper(a.v).WithConfigFile(a.configFile).Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	a.query = query.New(a.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// No configuration needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trackctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, newRootCmd())
	stop()
	os.Exit(code)
}
