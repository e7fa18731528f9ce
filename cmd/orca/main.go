package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orca",
	Short: "Orca runs browser-driven UI test suites",
	Long: `Orca runs browser-driven UI test suites.

Suites are ordered lists of cases, cases are ordered lists of action groups and
every executed node is recorded as an audit log under an execution request.
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath(), "path to config file")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return "config.toml"
}
