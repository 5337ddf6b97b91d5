package cmd

import (
	"context"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/nikogura/resume-randomizer/pkg/source"
	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var codebookXLSX bool

//nolint:gochecknoglobals // Cobra boilerplate
var codebookOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var codebookCmd = &cobra.Command{
	Use:   "codebook <template>",
	Short: "Write the codebook of a template without generating resumes",
	Long: `Write <name>_codebook.txt, a tab-separated table with one row per Leaf:
its parent section variable, its position, and its text on one line.

Example:
  resume-randomizer codebook engineer.txt
  resume-randomizer codebook engineer --xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runCodebook,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(codebookCmd)
	codebookCmd.Flags().BoolVar(&codebookXLSX, "xlsx", false, "Also write the codebook as a spreadsheet")
	codebookCmd.Flags().StringVar(&codebookOutputDir, "output-dir", "", "Output directory for the fs sink (default from config)")
}

func runCodebook(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var tmpl *template.Template
	tmpl, err = source.Resolve(ctx, cfg.TemplateDir, args[0])
	if err != nil {
		return err
	}

	outDir := codebookOutputDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	var store sink.Store
	store, err = openStore(ctx, cfg, outDir)
	if err != nil {
		return err
	}

	err = storeCodebook(ctx, store, tmpl, templateBase(tmpl.Path), codebookXLSX || cfg.CodebookXLSX)
	if err != nil {
		printFailure(tmpl, err)
		return err
	}

	return err
}
