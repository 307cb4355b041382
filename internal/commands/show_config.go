package edudash

import (
	"fmt"

	"github.com/mwiater/edudash/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying configuration",
}

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig())
	},
}

// showLayoutCmd prints the effective tab layout as YAML, ready to be edited
// and passed back with --layoutFile.
var showLayoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show the dashboard tab layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := loadLayout()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(layout)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	showCmd.AddCommand(showLayoutCmd)
	rootCmd.AddCommand(showCmd)
}
