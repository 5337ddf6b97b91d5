// Package renderer turns generated resume text into PDFs with pandoc.
package renderer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// Pandoc renders through a LaTeX template and class file.
type Pandoc struct {
	TemplatePath string
	ClassPath    string
}

// RenderPDF converts document text (read as markdown) to PDF bytes.
func (p Pandoc) RenderPDF(ctx context.Context, name string, text []byte) (pdf []byte, err error) {
	// Validate pandoc exists
	err = checkPandocExists(ctx)
	if err != nil {
		return pdf, err
	}

	// Validate input files exist
	err = validateFiles(p.TemplatePath, p.ClassPath)
	if err != nil {
		return pdf, err
	}

	var workDir string
	workDir, err = os.MkdirTemp("", "resume-randomizer-pdf-")
	if err != nil {
		err = errors.Wrap(err, "failed to create pandoc work directory")
		return pdf, err
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, filepath.Base(name)+".md")
	outputPath := filepath.Join(workDir, filepath.Base(name)+".pdf")

	err = WriteSource(text, inputPath)
	if err != nil {
		return pdf, err
	}

	// Build pandoc command
	cmd := exec.CommandContext(ctx,
		"pandoc",
		"-f", "markdown",
		"-t", "pdf",
		"-o", outputPath,
		"--template", p.TemplatePath,
		"--number-sections=false",
		inputPath,
	)

	// Set TEXINPUTS to include directory with .cls file
	classDir := filepath.Dir(p.ClassPath)
	texinputs := classDir + ":" + os.Getenv("TEXINPUTS")
	cmd.Env = append(os.Environ(), "TEXINPUTS="+texinputs)

	// Capture output
	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed for %s: %s", name, string(output))
		return pdf, err
	}

	pdf, err = os.ReadFile(outputPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to read rendered PDF: %s", outputPath)
		return pdf, err
	}

	return pdf, err
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists(ctx context.Context) (err error) {
	cmd := exec.CommandContext(ctx, "pandoc", "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.New("pandoc not found in PATH (install pandoc to generate PDFs)")
		return err
	}
	return err
}

// validateFiles checks that required files exist.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	return err
}

// WriteSource writes pandoc input to a file, creating its directory.
func WriteSource(content []byte, outputPath string) (err error) {
	// Ensure output directory exists
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	// Write file
	err = os.WriteFile(outputPath, content, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write pandoc input: %s", outputPath)
		return err
	}

	return err
}
