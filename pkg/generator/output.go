package generator

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
)

// Output receives the streams of one generated document. Nil writers are discarded.
type Output struct {
	// Text is the document body.
	Text io.Writer
	// Log gets each decision's tag line followed by the chosen 0-based index.
	Log io.Writer
	// Trace gets the document name then a tab and index per decision, on one line.
	Trace io.Writer
}

// Decision is one Random or Dependent choice, in document order.
type Decision struct {
	Kind        template.TagKind
	Label       string
	VariableKey string
	Count       int
	Choice      int
	Line        string
	LineNo      int
}

// Result is what Generate reports about a finished document.
type Result struct {
	Document  Document
	Batch     int
	Batches   int
	PerBatch  int
	Decisions []Decision
}

// CSVHeader are the fixed leading columns of the per-document CSV.
//
//nolint:gochecknoglobals // fixed column set
var CSVHeader = []string{"filename", "batch", "numberOfBatches", "resume", "numberOfResumesPerBatch"}

// ColumnName turns a variable key into its CSV column, e.g. "1-2-iter3" becomes "v1_2_iter3".
func ColumnName(key string) (name string) {
	name = "v" + strings.ReplaceAll(key, "-", "_")
	return name
}

// WriteCSV writes a header row and one data row for the document. Choices are 1-based
// and commas are dropped from the document name.
func WriteCSV(w io.Writer, res Result) (err error) {
	header := append([]string(nil), CSVHeader...)
	row := []string{
		strings.ReplaceAll(res.Document.Name, ",", ""),
		strconv.Itoa(res.Batch),
		strconv.Itoa(res.Batches),
		strconv.Itoa(res.Document.Index),
		strconv.Itoa(res.PerBatch),
	}
	for _, d := range res.Decisions {
		header = append(header, ColumnName(d.VariableKey))
		row = append(row, strconv.Itoa(d.Choice+1))
	}

	cw := csv.NewWriter(w)
	err = cw.WriteAll([][]string{header, row})
	if err != nil {
		err = errors.Wrap(err, "failed to write decision CSV")
		return err
	}

	return err
}

// stickyWriter keeps the first write error so the walker can check once at the end.
type stickyWriter struct {
	w   io.Writer
	err error
}

func newStickyWriter(w io.Writer) (s *stickyWriter) {
	if w == nil {
		w = io.Discard
	}
	s = &stickyWriter{w: w}
	return s
}

func (s *stickyWriter) WriteString(text string) {
	if s.err != nil || text == "" {
		return
	}
	_, s.err = io.WriteString(s.w, text)
}
