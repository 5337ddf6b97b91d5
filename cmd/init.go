package cmd

import (
	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at --config, or $HOME/.resume-randomizer/config.json.
A path ending in .yaml or .yml gets a YAML file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	printOK("Created %s", path)

	return err
}
