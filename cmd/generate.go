package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/codebook"
	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/nikogura/resume-randomizer/pkg/generator"
	"github.com/nikogura/resume-randomizer/pkg/renderer"
	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/nikogura/resume-randomizer/pkg/source"
	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Upper bound on one generate run, PDF rendering included.
const generateTimeout = 30 * time.Minute

// Filename timestamp layout, e.g. _2024-05-01-13-45-09.
const stampLayout = "_2006-01-02-15-04-05"

// logExplanation closes the choice log preamble.
const logExplanation = "Read the following lines in pairs.  The first line is the start tag (from the template file) that required a choice.  " +
	"The start tag line contains the type of section that required a decision, then the label of this section, then the number of " +
	"subsections to choose from, and then any settings for this section (e.g., repeating or matched files).  The second line is the " +
	"index of the subsection that was randomly chosen.  The indices run from 0 through n-1, inclusive, where n is the number of " +
	"choices listed in the start tag line.  All of the choices are also stored in the .txt file, and in the .csv file with variable " +
	"names based on the section IDs."

//nolint:gochecknoglobals // Cobra boilerplate
var batches int

//nolint:gochecknoglobals // Cobra boilerplate
var matched int

//nolint:gochecknoglobals // Cobra boilerplate
var seed uint64

//nolint:gochecknoglobals // Cobra boilerplate
var withTimestamp bool

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var renderPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <template>",
	Short: "Generate batches of randomized resumes",
	Long: `Generate batches of randomized resumes from a template.

The template can be provided as:
- A file path (e.g., engineer.txt)
- A URL (e.g., https://example.com/templates/engineer.txt)
- A name, fuzzy-matched against the templates in template_dir

Each resume is written as <name>.doc with its choice log (.sav), choice trace (.txt)
and coded choices (.csv). Templates using match modifiers produce --matched resumes
per batch, generated against the same batch history.

Example:
  resume-randomizer generate engineer.txt --batches 50
  resume-randomizer generate engineer --batches 20 --matched 2 --seed 7
  resume-randomizer generate engineer.txt --batches 5 --timestamp --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVar(&batches, "batches", 1, "Number of batches to generate")
	generateCmd.Flags().IntVar(&matched, "matched", 0, "Resumes per batch for matched templates (default 2 when the template uses match modifiers, else 1)")
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for a reproducible run (default is time based)")
	generateCmd.Flags().BoolVar(&withTimestamp, "timestamp", false, "Put the date and time in every filename (default from config)")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for the fs sink (default from config)")
	generateCmd.Flags().BoolVar(&renderPDF, "pdf", false, "Also render each resume to PDF with pandoc")
}

// run carries what every document of a generate run shares.
type run struct {
	cfg   config.Config
	tmpl  *template.Template
	store sink.Store
	gen   *generator.Generator
	pdf   *renderer.Pandoc
	base  string
	stamp string
	per   int
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	if batches < 1 {
		err = errors.Errorf("--batches must be at least 1, got %d", batches)
		return err
	}

	var r *run
	r, err = setupRun(ctx, cmd, args[0])
	if err != nil {
		return err
	}

	err = storeCodebook(ctx, r.store, r.tmpl, r.base, r.cfg.CodebookXLSX)
	if err != nil {
		printFailure(r.tmpl, err)
		return err
	}

	if getVerbose() {
		fmt.Printf("Generating %d batch(es) of %d resume(s) from %s\n", batches, r.per, r.tmpl.Path)
	}

	var count int
	for b := 1; b <= batches; b++ {
		batch := generator.NewBatch(b, batches, r.per)
		for j := 1; j <= r.per; j++ {
			err = r.document(ctx, batch, j)
			if err != nil {
				printFailure(r.tmpl, err)
				return err
			}
			count++
		}
	}

	printOK("Generated %d resume(s) in %d batch(es) (%s sink)", count, batches, r.store.Driver())

	return err
}

func setupRun(ctx context.Context, cmd *cobra.Command, input string) (r *run, err error) {
	r = &run{}

	r.cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return r, err
	}

	r.tmpl, err = source.Resolve(ctx, r.cfg.TemplateDir, input)
	if err != nil {
		printFailure(nil, err)
		return r, err
	}

	if getVerbose() {
		fmt.Printf("Loaded template %s (version %s, %d lines)\n", r.tmpl.Path, r.tmpl.Version, len(r.tmpl.Lines)+1)
	}

	r.per = resumesPerBatch(r.tmpl, matched)

	outDir := outputDir
	if outDir == "" {
		outDir = r.cfg.OutputDir
	}

	r.store, err = openStore(ctx, r.cfg, outDir)
	if err != nil {
		return r, err
	}

	r.stamp = time.Now().Format(stampLayout)
	r.base = templateBase(r.tmpl.Path)
	if withTimestamp || r.cfg.TimestampFilenames {
		r.base += r.stamp
	}

	opts := []generator.Option{generator.WithLogger(getLogger())}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, generator.WithRand(generator.NewSeeded(seed)))
	}
	r.gen = generator.New(r.tmpl, opts...)

	if renderPDF {
		err = r.cfg.ValidatePandoc()
		if err != nil {
			return r, err
		}
		r.pdf = &renderer.Pandoc{TemplatePath: r.cfg.Pandoc.TemplatePath, ClassPath: r.cfg.Pandoc.ClassFile}
	}

	return r, err
}

// resumesPerBatch is the flag value, or 2 for matched templates and 1 otherwise.
func resumesPerBatch(tmpl *template.Template, flag int) (n int) {
	switch {
	case flag > 0:
		n = flag
	case tmpl.Matched():
		n = 2
	default:
		n = 1
	}
	return n
}

// templateBase strips directories, query strings and the extension from a template path or URL.
func templateBase(path string) (base string) {
	base = path
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = filepath.Base(filepath.FromSlash(base))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "resume"
	}
	return base
}

// documentName is <base>_<batch>, plus _<j>of<M> for matched sets; numbers are zero-padded.
func documentName(base string, batch, numBatches, j, per int) (name string) {
	name = base + "_" + generator.Pad(batch, numBatches)
	if per > 1 {
		name += "_" + generator.Pad(j, per) + "of" + strconv.Itoa(per)
	}
	return name
}

// writeLogPreamble writes the header block of a choice log.
func writeLogPreamble(w io.Writer, docFile, templatePath string, index int, stamp, header string, per int) {
	fmt.Fprintf(w, "%s is the text file that these choices created\n", docFile)
	fmt.Fprintf(w, "%s is the template file being used\n", templatePath)
	fmt.Fprintf(w, "%d is the index of this text file within a matched set\n", index)
	fmt.Fprintf(w, "%s is the current time as year, month, day, hour (out of 24), minute, second\n", stamp)
	fmt.Fprintf(w, "%s is the version of the program\n", Version)
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "%d is the number of text files being Matched.\n", per)
	fmt.Fprintf(w, "%s\n", logExplanation)
}

// document generates one resume and stores its artifacts. When generation fails only
// the choice log and trace are stored, as a record of where it stopped.
func (r *run) document(ctx context.Context, batch *generator.Batch, j int) (err error) {
	name := documentName(r.base, batch.Number, batch.Batches, j, r.per)
	docKey := name + ".doc"

	var text, choiceLog, trace, csvRow bytes.Buffer
	writeLogPreamble(&choiceLog, docKey, r.tmpl.Path, j, r.stamp, r.tmpl.Header, r.per)

	var res generator.Result
	res, err = r.gen.Generate(batch, generator.Document{Name: docKey, Index: j}, generator.Output{
		Text:  &text,
		Log:   &choiceLog,
		Trace: &trace,
	})
	if err != nil {
		storeFailureRecord(ctx, r.store, name, &choiceLog, &trace, err)
		err = errors.Wrapf(err, "failed to generate %s", docKey)
		return err
	}

	err = generator.WriteCSV(&csvRow, res)
	if err != nil {
		return err
	}

	artifacts := []struct {
		key  string
		data []byte
	}{
		{docKey, text.Bytes()},
		{name + ".sav", choiceLog.Bytes()},
		{name + ".txt", trace.Bytes()},
		{name + ".csv", csvRow.Bytes()},
	}

	if r.pdf != nil {
		var pdf []byte
		pdf, err = r.pdf.RenderPDF(ctx, name, text.Bytes())
		if err != nil {
			return err
		}
		artifacts = append(artifacts, struct {
			key  string
			data []byte
		}{name + ".pdf", pdf})
	}

	for _, a := range artifacts {
		_, err = putArtifact(ctx, r.store, a.key, a.data)
		if err != nil {
			if errors.Is(err, sink.ErrExists) {
				err = errors.Wrap(err, "output already exists; use --timestamp or another output directory")
			}
			return err
		}
	}

	if getVerbose() {
		printOK("%s (%d choices)", docKey, len(res.Decisions))
	}

	return err
}

// errorCode is the numeric code of a template error, or -1 for anything else.
func errorCode(err error) (code int) {
	code = -1
	var tmplErr *template.Error
	if errors.As(err, &tmplErr) {
		code = tmplErr.Code
	}
	return code
}

// storeFailureRecord stores the log and trace of a failed document, the log ending in
// its error code. Storage problems are only warned about.
func storeFailureRecord(ctx context.Context, store sink.Store, name string, choiceLog, trace *bytes.Buffer, genErr error) {
	fmt.Fprintf(choiceLog, "%d is the error code...this template file had a problem\n", errorCode(genErr))

	for key, data := range map[string][]byte{name + ".sav": choiceLog.Bytes(), name + ".txt": trace.Bytes()} {
		_, err := putArtifact(ctx, store, key, data)
		if err != nil {
			printWarn("could not store failure record %s: %v", key, err)
		}
	}
}

// storeCodebook builds the codebook once per run and stores it as TSV, and as XLSX
// when asked. An identical earlier codebook under the same name is kept.
func storeCodebook(ctx context.Context, store sink.Store, tmpl *template.Template, base string, xlsx bool) (err error) {
	var rows []codebook.Row
	rows, err = codebook.Build(tmpl)
	if err != nil {
		err = errors.Wrap(err, "failed to build codebook")
		return err
	}

	var tsv bytes.Buffer
	err = codebook.WriteTSV(&tsv, rows)
	if err != nil {
		return err
	}

	outputs := map[string][]byte{base + "_codebook.txt": tsv.Bytes()}

	if xlsx {
		var sheet bytes.Buffer
		err = codebook.WriteXLSX(&sheet, rows)
		if err != nil {
			return err
		}
		outputs[base+"_codebook.xlsx"] = sheet.Bytes()
	}

	for key, data := range outputs {
		_, err = putArtifact(ctx, store, key, data)
		if errors.Is(err, sink.ErrExists) {
			printWarn("%s already exists; keeping it", key)
			err = nil
			continue
		}
		if err != nil {
			return err
		}
	}

	printOK("Codebook: %d leaves", len(rows))

	return err
}
