package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install the script for one shell.
type shellCompletion struct {
	// loadHint is printed to stderr when the script goes to stdout.
	loadHint string
	generate func(w io.Writer) error
	// target is the install path under home; empty when --install is unsupported.
	target func(home string) string
	after  string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		loadHint: `eval "$(tl completion bash)"`,
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "tl")
		},
		after: "Restart your shell to load them.",
	},
	"zsh": {
		loadHint: `eval "$(tl completion zsh)"`,
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_tl")
		},
		after: "Ensure the directory is in your fpath, then run: autoload -Uz compinit && compinit",
	},
	"fish": {
		loadHint: "tl completion fish | source",
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "tl.fish")
		},
		after: "Completions load in new fish sessions automatically.",
	},
	"powershell": {
		loadHint: "tl completion powershell | Out-String | Invoke-Expression",
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for tl",
	Long: `Print or install tab-completions for tl commands, list names and task ids.

Supported shells: bash, zsh, fish, powershell

  tl completion bash --install
  eval "$(tl completion zsh)"`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		sc, ok := shellCompletions[args[0]]
		if !ok {
			return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
		}

		if completionInstall {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("detecting home directory: %w", err)
			}
			return installCompletion(cmd.OutOrStdout(), args[0], sc, home)
		}

		// Hints go to stderr so the script can be piped.
		fmt.Fprintf(cmd.ErrOrStderr(), "# To load completions in your current session:\n#   %s\n", sc.loadHint)
		return sc.generate(cmd.OutOrStdout())
	},
}

func installCompletion(out io.Writer, shell string, sc shellCompletion, home string) error {
	if sc.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'tl completion %s' and add the output to your profile", shell, shell)
	}
	target := sc.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := sc.generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}

	fmt.Fprintf(out, "%s completions installed to %s\n%s\n", shell, target, sc.after)
	return nil
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell's completion directory")

	// Replace Cobra's default completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
