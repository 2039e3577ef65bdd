package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/render"
)

var listRmYes bool

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show all lists",
	Long:  `Show every list in creation order. The selected list is marked with *.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		render.NewTextView(cmd.OutOrStdout()).ShowLists(render.BuildListPanel(ctrl.State()))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Create, select and delete lists",
}

var listAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Create a list and select it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("list name must not be blank")
		}
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		return ctrl.AddList(name)
	},
}

var listUseCmd = &cobra.Command{
	Use:   "use <id|name>",
	Short: "Select a list",
	Long: `Select a list by id, by name (case-insensitive) or by a unique id
prefix. Selecting the list that is already selected does nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		list, err := ctrl.Store().FindList(args[0])
		if err != nil {
			return err
		}
		return ctrl.SetActiveList(list.ID)
	},
}

var listRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Delete the selected list and all its tasks",
	Long: `Delete the selected list after confirmation. The first remaining list
becomes selected. Pass --yes to skip the prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(render.NewTextView(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if ctrl.State().ActiveListID == nil {
			return fmt.Errorf("no list selected: %w", core.ErrNotFound)
		}

		var confirm core.Confirmer = core.AlwaysConfirm
		if !listRmYes && (Config == nil || Config.UI.ConfirmDelete) {
			confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return ctrl.DeleteActiveList(confirm)
	},
}

// promptConfirmer asks on out and accepts "y" or "yes" read from in.
func promptConfirmer(in io.Reader, out io.Writer) core.Confirmer {
	return core.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func init() {
	listRmCmd.Flags().BoolVarP(&listRmYes, "yes", "y", false, "Delete without asking")

	listCmd.AddCommand(listAddCmd)
	listCmd.AddCommand(listUseCmd)
	listCmd.AddCommand(listRmCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(listCmd)
}
