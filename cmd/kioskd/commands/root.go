// Package commands implements the kioskd CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "kioskd",
	Short: "kioskd - desktop session kiosk-mode controller",
	Long: `kioskd reconciles a supervised desktop session (window manager plus
optional companion service) with a desired kiosk or normal display mode
over a small HTTP control surface, suppressing the redundant mode
re-applies that make the desktop flicker under client polling.

Use "kioskd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string { return cfgFile }

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/kioskd/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kioskd %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}
