package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/storage"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the stored state for problems",
	Long: `Validate the raw storage slot against the state schema and report
duplicate ids or a selection that points at a missing list.

tl always loads what it can: a bad payload is repaired or replaced with an
empty state. With --fix the recovered state is written back to the slot,
with a dangling selection cleared and an unknown filter reset to "all".
Duplicate ids and empty names are reported but left for manual repair.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Persist == nil {
			return fmt.Errorf("storage not initialized")
		}
		out := cmd.OutOrStdout()

		raw, ok, err := Persist.Raw()
		if err != nil {
			return err
		}
		if !ok || raw == "" {
			fmt.Fprintln(out, "No stored state; tl starts empty.")
			return nil
		}

		problems, err := storage.Validate(raw)
		if err != nil {
			return fmt.Errorf("validating state: %w", err)
		}
		res, err := Persist.Load()
		if err != nil {
			return err
		}

		if len(problems) == 0 && res.Recovery == storage.RecoveryNone {
			fmt.Fprintf(out, "OK: %d list(s)\n", len(res.State.Lists))
			return nil
		}

		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		switch res.Recovery {
		case storage.RecoveryReset:
			fmt.Fprintf(out, "On load: reset to an empty state (%s)\n", res.Reason)
		case storage.RecoveryRepaired:
			fmt.Fprintf(out, "On load: repaired (%s)\n", res.Reason)
		}

		if !doctorFix {
			return fmt.Errorf("stored state has problems (run \"tl doctor --fix\" to rewrite it)")
		}
		if fixed := storage.Normalise(res.State); len(fixed) > 0 {
			fmt.Fprintf(out, "Reset %s to defaults.\n", strings.Join(fixed, ", "))
		}
		if err := Persist.Save(res.State); err != nil {
			return err
		}
		core.LogRecovery(Events, res)
		fmt.Fprintln(out, "Wrote the recovered state back to storage.")

		raw, _, err = Persist.Raw()
		if err != nil {
			return err
		}
		remaining, err := storage.Validate(raw)
		if err != nil {
			return fmt.Errorf("validating state: %w", err)
		}
		if len(remaining) > 0 {
			for _, p := range remaining {
				fmt.Fprintf(out, "  - still present: %s\n", p)
			}
			return fmt.Errorf("%d problem(s) need manual repair", len(remaining))
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Write the recovered state back to storage")
	rootCmd.AddCommand(doctorCmd)
}
