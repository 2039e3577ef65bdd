package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	tlmcp "github.com/valter-silva-au/tasklists/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the tl MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tl MCP server on stdio",
	Long: `Start the tl MCP server on stdio transport.

The server exposes lists and tasks as MCP tools: list_lists, get_list,
add_list, select_list, add_item, toggle_item, delete_item, clear_completed,
set_filter and get_stats. Deleting a list is only available interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		srv := tlmcp.NewServer(ctrl, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
