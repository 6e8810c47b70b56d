package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for randlist.

To load completions:

Bash:
  $ source <(randlist completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ randlist completion bash > /etc/bash_completion.d/randlist
  # macOS:
  $ randlist completion bash > $(brew --prefix)/etc/bash_completion.d/randlist

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ randlist completion zsh > "${fpath[1]}/_randlist"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ randlist completion fish | source

  # To load completions for each session, execute once:
  $ randlist completion fish > ~/.config/fish/completions/randlist.fish

PowerShell:
  PS> randlist completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> randlist completion powershell > randlist.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}
