package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/codebook"
	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/nikogura/resume-randomizer/pkg/generator"
	"github.com/nikogura/resume-randomizer/pkg/source"
	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var checkRuns int

//nolint:gochecknoglobals // Cobra boilerplate
var checkCmd = &cobra.Command{
	Use:   "check <template>",
	Short: "Validate a template without writing anything",
	Long: `Validate a template: check that every section is balanced, then generate
a few batches in memory so random choices and match rules are exercised.

Errors are reported with the surrounding template lines.

Example:
  resume-randomizer check engineer.txt
  resume-randomizer check engineer --runs 50 --matched 3`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkRuns, "runs", 10, "Number of batches to generate in memory")
	checkCmd.Flags().IntVar(&matched, "matched", 0, "Resumes per batch for matched templates (default 2 when the template uses match modifiers, else 1)")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
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

	err = checkTemplate(tmpl, checkRuns, resumesPerBatch(tmpl, matched))
	if err != nil {
		printFailure(tmpl, err)
		return err
	}

	printOK("%s is valid", tmpl.Path)

	return err
}

// checkTemplate builds the codebook and generates runs batches of per documents,
// discarding the output.
func checkTemplate(tmpl *template.Template, runs, per int) (err error) {
	var rows []codebook.Row
	rows, err = codebook.Build(tmpl)
	if err != nil {
		return err
	}

	gen := generator.New(tmpl, generator.WithLogger(getLogger()))

	var decisions int
	for b := 1; b <= runs; b++ {
		batch := generator.NewBatch(b, runs, per)
		for j := 1; j <= per; j++ {
			var res generator.Result
			res, err = gen.Generate(batch, generator.Document{Name: fmt.Sprintf("check_%d_%d", b, j), Index: j}, generator.Output{})
			if err != nil {
				return err
			}
			decisions += len(res.Decisions)
		}
	}

	if getVerbose() {
		fmt.Printf("%d leaves, %d documents, %d choices\n", len(rows), runs*per, decisions)
	}

	return err
}
