package cmd

import (
	"fmt"

	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/nikogura/resume-randomizer/pkg/source"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates in the template directory",
	Long: `List the .txt templates in template_dir with their version numbers.
Fragment files (first line starting with *fragment*) are skipped.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var entries []source.Entry
	entries, err = source.List(cfg.TemplateDir)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		printWarn("no templates found in %s", cfg.TemplateDir)
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Templates in %s:", cfg.TemplateDir)))
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "?"
		}
		fmt.Printf("  %-30s %s\n", e.Name, dimStyle.Render("version "+version))
	}

	return err
}
