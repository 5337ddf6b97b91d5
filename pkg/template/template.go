// Package template reads resume templates: a one-line version header followed by
// a tree of balanced *kind* label ... *end_kind* label sections.
package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// HeaderSuffix is the text expected after the version number on the first line.
const HeaderSuffix = "gui version number"

// Template is a fully expanded template. Line 1 is the header; the body starts at line 2.
type Template struct {
	Path    string
	Header  string
	Version string
	Lines   []string
}

// Load reads a template from disk.
func Load(path string) (tmpl *Template, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read template file: %s", path)
		return tmpl, err
	}

	tmpl, err = Parse(path, string(data))
	return tmpl, err
}

// Parse splits template text into lines and validates the version header.
func Parse(path, text string) (tmpl *Template, err error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		err = Errorf(Malformed, -53, 1, "", "the template %s is empty; the first line should read '<version> %s'", path, HeaderSuffix)
		return tmpl, err
	}

	header := lines[0]
	fields := strings.Fields(header)
	if len(fields) < 4 || strings.Join(fields[1:4], " ") != HeaderSuffix {
		err = Errorf(Malformed, -53, 1, header, "the template %s does not start with '<version> %s'", path, HeaderSuffix)
		return tmpl, err
	}

	tmpl = &Template{
		Path:    path,
		Header:  header,
		Version: fields[0],
		Lines:   lines[1:],
	}

	return tmpl, err
}

// Cursor returns a new read position at the first body line.
func (t *Template) Cursor() (c *Cursor) {
	c = &Cursor{lines: t.Lines}
	return c
}

// Matched reports whether any Random section uses a cross-document match modifier.
func (t *Template) Matched() (matched bool) {
	for _, line := range t.Lines {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != "*random*" {
			continue
		}
		for _, f := range fields[3:] {
			switch f {
			case "*matchSame*", "*matchDifferent*", "*matchOnlyOneEver*", "*matchMaxSelectionsPerSubPoint*":
				matched = true
				return matched
			}
		}
	}
	return matched
}

// Excerpt returns the numbered template lines within radius of lineNo (1-based, header included).
func (t *Template) Excerpt(lineNo, radius int) (excerpt string) {
	all := append([]string{t.Header}, t.Lines...)
	var b strings.Builder
	for i, line := range all {
		n := i + 1
		if n+radius < lineNo || n-radius > lineNo {
			continue
		}
		marker := " "
		if n == lineNo {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s%d:%s\n", marker, n, line)
	}
	excerpt = b.String()
	return excerpt
}

// Cursor is a forward read position over the template body with explicit rewind.
type Cursor struct {
	lines []string
	pos   int
}

// Mark is a saved cursor position.
type Mark int

// Next returns the next line and its template line number, or ok=false at EOF.
func (c *Cursor) Next() (line string, lineNo int, ok bool) {
	if c.pos >= len(c.lines) {
		return line, lineNo, ok
	}
	line = c.lines[c.pos]
	c.pos++
	lineNo = c.pos + 1
	ok = true
	return line, lineNo, ok
}

// Peek returns the next line without consuming it.
func (c *Cursor) Peek() (line string, ok bool) {
	if c.pos >= len(c.lines) {
		return line, ok
	}
	line = c.lines[c.pos]
	ok = true
	return line, ok
}

// Mark records the current position.
func (c *Cursor) Mark() (m Mark) {
	m = Mark(c.pos)
	return m
}

// Seek rewinds (or advances) to a recorded position.
func (c *Cursor) Seek(m Mark) {
	c.pos = int(m)
}

// LineNumber is the template line number of the most recently consumed line.
func (c *Cursor) LineNumber() (n int) {
	n = c.pos + 1
	return n
}
