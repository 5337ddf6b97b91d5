package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikogura/resume-randomizer/pkg/template"
)

// Placeholders valid only inside a repeating Random section.
const (
	PlaceholderStart               = "%start%"
	PlaceholderEnd                 = "%end%"
	PlaceholderCurrent             = "%current%"
	PlaceholderCurrentPlusInterval = "%currentPlusInterval%"
	PlaceholderNext                = "%next%"
)

//nolint:gochecknoglobals // compiled once
var (
	storePattern  = regexp.MustCompile(`%store%([^%]*)%([^%]*)%`)
	recallPattern = regexp.MustCompile(`%recall%([^%]*)%`)
	nextPattern   = regexp.MustCompile(`%next%([^%]*)%`)
	escapes       = strings.NewReplacer(`\n`, "\n", `\t`, "\t")
)

// iteration carries the range substitutions of the nearest repeating Random section.
type iteration struct {
	start               string
	end                 string
	current             string
	currentPlusInterval string
}

// expand runs the placeholder passes over one Leaf content line: positional
// substitution, then %store%, then %recall%. %next% is left in place for the
// deferred queue.
func (w *walker) expand(leaf template.Tag, sc scope, line string, lineNo int) (text string, err error) {
	if sc.iter == nil {
		for _, p := range []string{PlaceholderStart, PlaceholderEnd, PlaceholderCurrent, PlaceholderCurrentPlusInterval, PlaceholderNext} {
			if strings.Contains(line, p) {
				err = &Error{
					Kind:   template.Misplaced,
					Code:   -29,
					Label:  leaf.Label,
					LineNo: lineNo,
					Line:   line,
					Msg:    fmt.Sprintf("%s only has a value inside a Random section that repeats", p),
				}
				return text, err
			}
		}
	}

	text = w.positional(sc).Replace(line)

	for {
		m := storePattern.FindStringSubmatchIndex(text)
		if m == nil {
			break
		}
		name := text[m[2]:m[3]]
		w.s.memory[name] = escapes.Replace(text[m[4]:m[5]])
		text = text[:m[0]] + text[m[1]:]
	}

	for {
		m := recallPattern.FindStringSubmatchIndex(text)
		if m == nil {
			break
		}
		name := text[m[2]:m[3]]
		value, stored := w.s.memory[name]
		if !stored {
			err = &Error{
				Kind:   template.Unresolvable,
				Code:   -34,
				Label:  leaf.Label,
				LineNo: lineNo,
				Line:   line,
				Msg:    fmt.Sprintf("%%recall%% of %q, which was never stored with %%store%% in this document", name),
			}
			return text, err
		}
		text = text[:m[0]] + value + text[m[1]:]
	}

	return text, err
}

// positional builds the replacer for range and batch/document placeholders.
func (w *walker) positional(sc scope) (r *strings.Replacer) {
	b := w.s.batch
	doc := w.s.doc
	total := b.Batches * b.PerBatch
	overall := (b.Number-1)*b.PerBatch + doc.Index

	pairs := []string{
		"%batch%", strconv.Itoa(b.Number),
		"%batchpadded%", Pad(b.Number, b.Batches),
		"%numberofbatches%", strconv.Itoa(b.Batches),
		"%resume%", strconv.Itoa(doc.Index),
		"%resumepadded%", Pad(doc.Index, b.PerBatch),
		"%numberofresumesperbatch%", strconv.Itoa(b.PerBatch),
		"%resumecountoverbatches%", strconv.Itoa(overall),
		"%resumecountoverbatchespadded%", Pad(overall, total),
		"%totalnumberofresumes%", strconv.Itoa(total),
	}
	if sc.iter != nil {
		pairs = append(pairs,
			PlaceholderStart, sc.iter.start,
			PlaceholderEnd, sc.iter.end,
			PlaceholderCurrent, sc.iter.current,
			PlaceholderCurrentPlusInterval, sc.iter.currentPlusInterval,
		)
	}

	r = strings.NewReplacer(pairs...)
	return r
}

// Pad zero-pads n to the width of limit, e.g. Pad(7, 120) is "007".
func Pad(n, limit int) (s string) {
	s = fmt.Sprintf("%0*d", len(strconv.Itoa(limit)), n)
	return s
}

// deferredQueue holds document text waiting on %next%<label>% references.
// Once anything is queued, all later text is queued behind it so order is kept.
type deferredQueue struct {
	fragments []string
}

// Pending reports whether any text is held back.
func (q *deferredQueue) Pending() (pending bool) {
	pending = len(q.fragments) > 0
	return pending
}

// Push queues a fragment.
func (q *deferredQueue) Push(fragment string) {
	q.fragments = append(q.fragments, fragment)
}

// Waiting lists the labels still referenced by queued fragments, in first-seen order.
func (q *deferredQueue) Waiting() (labels []string) {
	seen := make(map[string]bool)
	for _, f := range q.fragments {
		for _, m := range nextPattern.FindAllStringSubmatch(f, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				labels = append(labels, m[1])
			}
		}
	}
	return labels
}

// Resolve substitutes value for every %next%<label>% in the queue. When no fragment
// is left waiting on any label the whole queue is returned, in order, and cleared.
func (q *deferredQueue) Resolve(label, value string) (ready []string) {
	placeholder := PlaceholderNext + label + "%"
	for i, f := range q.fragments {
		q.fragments[i] = strings.ReplaceAll(f, placeholder, value)
	}

	for _, f := range q.fragments {
		if strings.Contains(f, PlaceholderNext) {
			return ready
		}
	}

	ready = q.fragments
	q.fragments = nil
	return ready
}
