// Package generator walks a parsed template and produces one randomized document per
// call, writing the text, a choice log and a choice trace as it goes.
package generator

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
)

// Generator interprets one template. It is not safe for concurrent use.
type Generator struct {
	tmpl   *template.Template
	rng    *rand.Rand
	logger *slog.Logger
	// policies caches parsed Random tags by line number.
	policies map[int]Policy
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source, e.g. a seeded one for reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithLogger sets the structured logger for warnings and per-decision debug output.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a Generator for tmpl.
func New(tmpl *template.Template, opts ...Option) (g *Generator) {
	g = &Generator{tmpl: tmpl, policies: make(map[int]Policy)}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		now := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	return g
}

// NewSeeded returns a random source that repeats for the same seed.
func NewSeeded(seed uint64) (r *rand.Rand) {
	r = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r
}

// scope is what a section inherits from its parent.
type scope struct {
	key  string
	iter *iteration
}

type walker struct {
	g     *Generator
	s     *docState
	cur   *template.Cursor
	text  *stickyWriter
	log   *stickyWriter
	trace *stickyWriter
}

// Generate produces one document of batch. Matched documents must share the same
// Batch and be generated in index order. On failure the trace ends with a -1 entry
// and the returned error is a *Error carrying the document index.
func (g *Generator) Generate(batch *Batch, doc Document, out Output) (res Result, err error) {
	w := &walker{
		g:     g,
		s:     newDocState(batch, doc),
		cur:   g.tmpl.Cursor(),
		text:  newStickyWriter(out.Text),
		log:   newStickyWriter(out.Log),
		trace: newStickyWriter(out.Trace),
	}

	res = Result{
		Document: doc,
		Batch:    batch.Number,
		Batches:  batch.Batches,
		PerBatch: batch.PerBatch,
	}

	w.trace.WriteString(doc.Name)

	err = w.section(scope{})
	if err == nil && w.s.deferred.Pending() {
		err = &Error{
			Kind:   template.Unresolved,
			Code:   -40,
			LineNo: w.cur.LineNumber(),
			Msg:    "the document ended with %next% references that no repeating section resolved: " + strings.Join(w.s.deferred.Waiting(), ", "),
		}
	}

	res.Decisions = w.s.decisions

	if err != nil {
		w.trace.WriteString("\t-1")
		var tmplErr *Error
		if errors.As(err, &tmplErr) && tmplErr.Document == 0 {
			tmplErr.Document = doc.Index
		}
		g.logger.Debug("document failed", "document", doc.Name, "error", err)
		return res, err
	}

	for _, sw := range []*stickyWriter{w.text, w.log, w.trace} {
		if sw.err != nil {
			err = errors.Wrapf(sw.err, "failed to write output for %s", doc.Name)
			return res, err
		}
	}

	g.logger.Debug("document generated", "document", doc.Name, "decisions", len(res.Decisions))

	return res, err
}

// section consumes one complete section starting at the next line.
func (w *walker) section(sc scope) (err error) {
	line, lineNo, ok := w.cur.Next()
	if !ok {
		err = template.Errorf(template.Unbalanced, -5, w.cur.LineNumber(), "", "reached the end of the template while looking for a start tag; a Random, Constant or Dependent tag probably declares more subsections than it has")
		return err
	}

	var tag template.Tag
	tag, err = template.ScanTag(line, lineNo)
	if err != nil {
		return err
	}
	if !tag.Kind.IsStart() {
		err = template.Errorf(template.Unbalanced, -3, lineNo, line, "expected a start tag but found %s; a Random, Constant or Dependent tag probably declares more subsections than it has", tag.Kind.Token())
		return err
	}

	key := sc.key
	if key == "" {
		key = tag.Label
	}

	switch tag.Kind {
	case template.TagLeaf:
		err = w.leaf(tag, sc)
	case template.TagConstant:
		err = w.constant(tag, key, sc)
	case template.TagRandom:
		err = w.random(tag, key, sc)
	case template.TagDependent:
		err = w.dependent(tag, key, sc)
	}

	return err
}

// leaf emits content lines up to the matching end tag. Lines within one leaf are
// joined by newlines; consecutive leaves are concatenated directly.
func (w *walker) leaf(tag template.Tag, sc scope) (err error) {
	first := true
	for {
		line, lineNo, ok := w.cur.Next()
		if !ok {
			err = template.Errorf(template.Unbalanced, -11, tag.LineNo, tag.Line, "no *end_leaf* %s before the end of the template", tag.Label)
			return err
		}
		if template.IsEnd(line, template.TagEndLeaf, tag.Label) {
			return err
		}

		var text string
		text, err = w.expand(tag, sc, line, lineNo)
		if err != nil {
			return err
		}
		if !first {
			text = "\n" + text
		}
		first = false
		w.emit(text)
	}
}

func (w *walker) constant(tag template.Tag, key string, sc scope) (err error) {
	for i := 1; i <= tag.Count; i++ {
		err = w.section(scope{key: key + "-" + strconv.Itoa(i), iter: sc.iter})
		if err != nil {
			return err
		}
	}

	line, lineNo, ok := w.cur.Next()
	if !ok {
		err = template.Errorf(template.Unbalanced, -12, tag.LineNo, tag.Line, "no *end_constant* %s before the end of the template", tag.Label)
		return err
	}
	if !template.IsEnd(line, template.TagEndConstant, tag.Label) {
		err = template.Errorf(template.Unbalanced, -13, lineNo, line, "expected *end_constant* %s after %d subsections; check the count on line %d", tag.Label, tag.Count, tag.LineNo)
		return err
	}

	return err
}

func (w *walker) random(tag template.Tag, key string, sc scope) (err error) {
	var p Policy
	p, err = w.g.policy(tag)
	if err != nil {
		return err
	}

	if !p.Repeat {
		err = w.enter(tag, p, key, sc)
		return err
	}

	n := p.Range.Len()
	if p.MinimumNumberOfEntries > 0 || p.MaximumNumberOfEntries > 0 {
		w.s.ranges[tag.Label] = &rangeTracker{total: n}
	}

	mark := w.cur.Mark()
	for i := 0; i < n; i++ {
		w.cur.Seek(mark)
		v := p.Range.At(i)
		it := &iteration{
			start:               p.Range.StartText(),
			end:                 p.Range.EndText(),
			current:             p.Range.Format(v),
			currentPlusInterval: p.Range.Format(v + p.Range.Interval),
		}
		err = w.enter(tag, p, key+"-iter"+it.current, scope{iter: it})
		if err != nil {
			return err
		}
	}

	if w.s.deferred.Pending() {
		w.resolve(tag.Label, p.Range.EndText())
	}

	return err
}

// enter performs one pass through a Random section: choose, log, skip to the choice,
// walk it and skip past the end tag.
func (w *walker) enter(tag template.Tag, p Policy, key string, sc scope) (err error) {
	var choice int
	var same bool
	choice, same, err = w.g.choose(w.s, tag, p, key)
	if err != nil {
		return err
	}

	if p.Repeat && !same && w.s.deferred.Pending() {
		w.resolve(tag.Label, sc.iter.current)
	}

	w.decide(tag, key, choice)

	err = w.skip(tag, choice)
	if err != nil {
		return err
	}

	if !(p.RepeatNoDoubles && same) {
		err = w.section(scope{key: key + "-" + strconv.Itoa(choice+1), iter: sc.iter})
		if err != nil {
			return err
		}
	}

	err = w.seekEnd(tag, -18)
	return err
}

func (w *walker) dependent(tag template.Tag, key string, sc scope) (err error) {
	mod, ok := tag.Modifier(template.ModMaster)
	if !ok {
		err = newError(template.Malformed, -59, tag, key, "a Dependent section needs '*master* <label>' naming the Random section it follows")
		return err
	}
	master := mod.Args[0]

	choice, chosen := w.s.lastChoice[master]
	if !chosen {
		err = newError(template.Unresolvable, -26, tag, key, "the master section %s has not made a choice yet in this document; it must come before its dependents", master)
		return err
	}
	if choice >= tag.Count {
		err = newError(template.Unresolvable, -28, tag, key, "the master section %s chose subsection %d but this Dependent section only has %d", master, choice+1, tag.Count)
		return err
	}

	w.decide(tag, key, choice)

	err = w.skip(tag, choice)
	if err != nil {
		return err
	}

	err = w.section(scope{key: key + "-" + strconv.Itoa(choice+1), iter: sc.iter})
	if err != nil {
		return err
	}

	err = w.seekEnd(tag, -27)
	return err
}

// decide appends a decision to the log, the trace and the decision list.
func (w *walker) decide(tag template.Tag, key string, choice int) {
	w.log.WriteString(strings.TrimRight(tag.Line, "\r\n") + "\n" + strconv.Itoa(choice) + "\n")
	w.trace.WriteString("\t" + strconv.Itoa(choice))
	w.s.decisions = append(w.s.decisions, Decision{
		Kind:        tag.Kind,
		Label:       tag.Label,
		VariableKey: key,
		Count:       tag.Count,
		Choice:      choice,
		Line:        tag.Line,
		LineNo:      tag.LineNo,
	})
}

// skip consumes n complete child sections without emitting anything.
func (w *walker) skip(parent template.Tag, n int) (err error) {
	for i := 0; i < n; i++ {
		line, lineNo, ok := w.cur.Next()
		if !ok {
			err = newError(template.Unbalanced, -2, parent, "", "reached the end of the template while skipping subsection %d of %d", i+1, parent.Count)
			return err
		}

		var child template.Tag
		child, err = template.ScanTag(line, lineNo)
		if err != nil {
			return err
		}
		if !child.Kind.IsStart() {
			err = template.Errorf(template.Unbalanced, -3, lineNo, line, "expected subsection %d of %s %s to start here", i+1, parent.Kind, parent.Label)
			return err
		}

		err = w.seekEnd(child, -4)
		if err != nil {
			return err
		}
	}

	return err
}

// seekEnd consumes lines through the end tag matching tag.
func (w *walker) seekEnd(tag template.Tag, code int) (err error) {
	end := tag.Kind.End()
	for {
		line, _, ok := w.cur.Next()
		if !ok {
			err = newError(template.Unbalanced, code, tag, "", "no %s %s before the end of the template", end.Token(), tag.Label)
			return err
		}
		if template.IsEnd(line, end, tag.Label) {
			return err
		}
	}
}

// emit writes text, or queues it behind pending %next% references.
func (w *walker) emit(text string) {
	if w.s.deferred.Pending() || strings.Contains(text, PlaceholderNext) {
		w.s.deferred.Push(text)
		return
	}
	w.text.WriteString(text)
}

// resolve fills %next%<label>% with value and flushes the queue once nothing waits.
func (w *walker) resolve(label, value string) {
	for _, fragment := range w.s.deferred.Resolve(label, value) {
		w.text.WriteString(fragment)
	}
}
