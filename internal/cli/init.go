package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pvemon/ttydash/internal/config"
	"github.com/pvemon/ttydash/internal/errors"
)

var initForce bool

// initCmd writes a starter config into the current directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter ttydash.yaml",
	Long: `Write a commented starter configuration to ./ttydash.yaml.

The starter assumes a Proxmox exporter but every metric, view, and color
in it is meant to be edited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func initConfig(force bool) error {
	if _, err := os.Stat(config.ConfigFileName); err == nil && !force {
		return errors.New(errors.ErrConfig,
			config.ConfigFileName+" already exists",
			"Use --force to overwrite it")
	}

	if err := os.WriteFile(config.ConfigFileName, []byte(config.StarterConfig), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+config.ConfigFileName,
			"Check directory permissions")
	}

	fmt.Printf("Created %s\n", config.ConfigFileName)
	fmt.Println("Edit datasources.prometheus.base_url, then run: ttydash")
	return nil
}
