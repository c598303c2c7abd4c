package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the tarefista application
var rootCmd = &cobra.Command{
	Use:   "tarefista",
	Short: "Day-by-day task and goal tracking from the terminal",
	Long: `tarefista tracks one-time and recurring tasks against a remote backend.

Running it with no arguments shows today's tasks. Tasks can be used
anonymously; logging in moves the session to your account.`,
	SilenceUsage: true,
}

var (
	flagAPIURL     string
	flagConfigPath string
	flagVerbose    bool
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tarefista version %s\n" .Version}}`)

	// If no subcommand is provided, show today's tasks by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "today")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "override the backend base URL")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newPhraseCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}
