package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/internal/storage"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// BasePath is the tl data directory.
var BasePath string

// Config is the loaded .tlconfig.yaml.
var Config *models.Config

// Persist loads and saves the application state.
var Persist storage.StateStore

// Events receives controller events. Nil when the event log is disabled.
var Events core.EventLogger

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "tl - task lists in the terminal",
	Long: `tl keeps named task lists and their items in a local storage file.

Run without a subcommand to open the interactive UI. The subcommands perform
a single action against the same state and print the resulting view.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newController builds a controller over Persist that renders into view.
func newController(view render.View) (*core.Controller, error) {
	if Persist == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	return core.NewController(core.ControllerOpts{
		Persist: Persist,
		View:    view,
		Events:  Events,
	})
}
