package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a task to the selected list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := requireActiveList(ctrl); err != nil {
			return err
		}
		return ctrl.AddItem(strings.Join(args, " "))
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Mark a task done or not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withItem(cmd, args[0], func(ctrl *core.Controller, item *models.TaskItem) error {
			return ctrl.ToggleItem(item.ID)
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <item-id>",
	Short: "Delete a task from the selected list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withItem(cmd, args[0], func(ctrl *core.Controller, item *models.TaskItem) error {
			return ctrl.DeleteItem(item.ID)
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove completed tasks from the selected list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := requireActiveList(ctrl); err != nil {
			return err
		}
		return ctrl.ClearCompleted()
	},
}

var filterCmd = &cobra.Command{
	Use:       "filter <all|active|done>",
	Short:     "Choose which tasks are shown",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.FilterAll), string(models.FilterActive), string(models.FilterDone)},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := models.ParseFilter(args[0])
		if err != nil {
			return err
		}
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		return ctrl.SetFilter(f)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the lists, the selected list and its visible tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctrl.Start()
		return nil
	},
}

func requireActiveList(ctrl *core.Controller) error {
	if ctrl.Store().ActiveList() == nil {
		return fmt.Errorf("no list selected (create one with \"tl list add <name>\"): %w", core.ErrNotFound)
	}
	return nil
}

// withItem resolves ref in the selected list and runs fn against it with a
// controller that prints to the command's output.
func withItem(cmd *cobra.Command, ref string, fn func(*core.Controller, *models.TaskItem) error) error {
	ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	item, err := ctrl.Store().FindItem(ref)
	if err != nil {
		return err
	}
	return fn(ctrl, item)
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(showCmd)
}
