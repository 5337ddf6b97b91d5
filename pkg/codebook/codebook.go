// Package codebook describes every Leaf of a template without making any choices,
// one row per Leaf, so coded choice data can be read back against the text.
package codebook

import (
	"io"
	"strings"

	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Codebook"

// Header is the codebook's column row.
//
//nolint:gochecknoglobals // fixed column set
var Header = []string{"Parent Section", "Leaf", "Text"}

// Row describes one Leaf.
type Row struct {
	// Parent is "v" plus the underscored parent label, or "-" for a root Leaf.
	Parent string
	// Leaf is the last dash-separated segment of the Leaf's label.
	Leaf string
	// Text is the Leaf content on one line with placeholders kept literally.
	Text string
}

// Build walks every section of tmpl and returns a row per Leaf in template order.
func Build(tmpl *template.Template) (rows []Row, err error) {
	c := tmpl.Cursor()
	err = walk(c, &rows)
	if err != nil {
		return rows, err
	}

	for {
		line, lineNo, ok := c.Next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) != "" {
			err = template.Errorf(template.Unbalanced, -52, lineNo, line, "found content after the end of the top-level section; a start tag probably declares fewer subsections than it has")
			return rows, err
		}
	}

	return rows, err
}

func walk(c *template.Cursor, rows *[]Row) (err error) {
	line, lineNo, ok := c.Next()
	if !ok {
		err = template.Errorf(template.Unbalanced, -38, c.LineNumber(), "", "reached the end of the template while looking for a start tag")
		return err
	}

	var tag template.Tag
	tag, err = template.ScanTag(line, lineNo)
	if err != nil {
		return err
	}
	if !tag.Kind.IsStart() {
		err = template.Errorf(template.Unbalanced, -38, lineNo, line, "expected a start tag; check the subsection counts and remove blank lines outside Leaf sections")
		return err
	}

	if tag.Kind == template.TagLeaf {
		var row Row
		row, err = leaf(c, tag)
		if err != nil {
			return err
		}
		*rows = append(*rows, row)
		return err
	}

	for i := 0; i < tag.Count; i++ {
		err = walk(c, rows)
		if err != nil {
			return err
		}
	}

	end, endNo, ok := c.Next()
	if !ok || !template.IsEnd(end, tag.Kind.End(), tag.Label) {
		err = template.Errorf(template.Unbalanced, -41, endNo, end, "expected %s %s after %d subsections; check the count on line %d", tag.Kind.End().Token(), tag.Label, tag.Count, tag.LineNo)
		return err
	}

	return err
}

func leaf(c *template.Cursor, tag template.Tag) (row Row, err error) {
	var lines []string
	for {
		line, _, ok := c.Next()
		if !ok {
			err = template.Errorf(template.Unbalanced, -11, tag.LineNo, tag.Line, "no *end_leaf* %s before the end of the template", tag.Label)
			return row, err
		}
		if template.IsEnd(line, template.TagEndLeaf, tag.Label) {
			break
		}
		lines = append(lines, strings.ReplaceAll(line, "\t", " "))
	}

	segments := strings.Split(tag.Label, "-")
	row = Row{
		Parent: "-",
		Leaf:   segments[len(segments)-1],
		Text:   strings.Join(lines, " "),
	}
	if len(segments) > 1 {
		row.Parent = "v" + strings.Join(segments[:len(segments)-1], "_")
	}

	return row, err
}

// WriteTSV writes the header and rows as tab-separated lines.
func WriteTSV(w io.Writer, rows []Row) (err error) {
	var b strings.Builder
	b.WriteString(strings.Join(Header, "\t") + "\n")
	for _, r := range rows {
		b.WriteString(r.Parent + "\t" + r.Leaf + "\t" + r.Text + "\n")
	}

	_, err = io.WriteString(w, b.String())
	if err != nil {
		err = errors.Wrap(err, "failed to write codebook")
		return err
	}

	return err
}

// WriteXLSX writes the same table as a spreadsheet with a bold header row.
func WriteXLSX(w io.Writer, rows []Row) (err error) {
	f := excelize.NewFile()
	defer f.Close()

	err = f.SetSheetName("Sheet1", SheetName)
	if err != nil {
		err = errors.Wrap(err, "failed to name codebook sheet")
		return err
	}

	var bold int
	bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		err = errors.Wrap(err, "failed to create header style")
		return err
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, Header)
	for _, r := range rows {
		table = append(table, []string{r.Parent, r.Leaf, r.Text})
	}

	for i, cells := range table {
		for j, value := range cells {
			var addr string
			addr, err = excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				err = errors.Wrap(err, "failed to address codebook cell")
				return err
			}
			err = f.SetCellStr(SheetName, addr, value)
			if err != nil {
				err = errors.Wrapf(err, "failed to set codebook cell %s", addr)
				return err
			}
		}
	}

	err = f.SetCellStyle(SheetName, "A1", "C1", bold)
	if err != nil {
		err = errors.Wrap(err, "failed to style codebook header")
		return err
	}

	err = f.SetColWidth(SheetName, "C", "C", 80)
	if err != nil {
		err = errors.Wrap(err, "failed to size codebook text column")
		return err
	}

	err = f.Write(w)
	if err != nil {
		err = errors.Wrap(err, "failed to write codebook spreadsheet")
		return err
	}

	return err
}
