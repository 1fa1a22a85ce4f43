package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/kioskd/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a kioskd configuration file populated with defaults.

By default, the file is created at $XDG_CONFIG_HOME/kioskd/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  kioskd init

  # Initialize with custom path
  kioskd init --config /etc/kioskd/config.yaml

  # Force overwrite an existing config
  kioskd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error
	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point mode.script at your kiosk-mode toggle script")
	fmt.Println("  2. Start the server with: kioskd start")
	return nil
}
