package generator

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
)

func mustParse(t *testing.T, body string) (tmpl *template.Template) {
	t.Helper()
	tmpl, err := template.Parse("test.txt", "1.0 gui version number\n"+body)
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}
	return tmpl
}

type captured struct {
	text, log, trace bytes.Buffer
}

func (c *captured) output() (out Output) {
	out = Output{Text: &c.text, Log: &c.log, Trace: &c.trace}
	return out
}

func generateOne(t *testing.T, body string, seed uint64) (c *captured, res Result, err error) {
	t.Helper()
	g := New(mustParse(t, body), WithRand(NewSeeded(seed)))
	c = &captured{}
	res, err = g.Generate(NewBatch(1, 1, 1), Document{Name: "doc", Index: 1}, c.output())
	return c, res, err
}

func keys(res Result) (ks []string) {
	for _, d := range res.Decisions {
		ks = append(ks, d.VariableKey)
	}
	return ks
}

func requireKind(t *testing.T, err error, kind template.Kind, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error %d, got nil", kind, code)
	}
	var tmplErr *Error
	if !errors.As(err, &tmplErr) {
		t.Fatalf("Expected *Error, got %T: %v", err, err)
	}
	if tmplErr.Kind != kind {
		t.Errorf("Expected kind %s, got %s (%v)", kind, tmplErr.Kind, err)
	}
	if tmplErr.Code != code {
		t.Errorf("Expected code %d, got %d (%v)", code, tmplErr.Code, err)
	}
}

const threeWay = `*random* 1 3 %s
*leaf* 1-1
A
*end_leaf* 1-1
*leaf* 1-2
B
*end_leaf* 1-2
*leaf* 1-3
C
*end_leaf* 1-3
*end_random* 1`

func TestGenerateText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "leaf joins lines with newlines",
			body: "*leaf* 1\nHello\nWorld\n*end_leaf* 1",
			want: "Hello\nWorld",
		},
		{
			name: "constant concatenates leaves",
			body: "*constant* 1 2\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*leaf* 1-2\nB\n*end_leaf* 1-2\n*end_constant* 1",
			want: "AB",
		},
		{
			name: "integer range",
			body: "*random* 1 1 *repeat* 0 6 2\n*leaf* 1-1\n[%current%-%currentPlusInterval%]\n*end_leaf* 1-1\n*end_random* 1",
			want: "[0-2][2-4][4-6]",
		},
		{
			name: "decimal range",
			body: "*random* 1 1 *repeat* 0 1 0.5\n*leaf* 1-1\n[%start% %current% %end%]\n*end_leaf* 1-1\n*end_random* 1",
			want: "[0 0.0 1][0 0.5 1]",
		},
		{
			name: "store then recall",
			body: "*constant* 1 2\n*leaf* 1-1\n%store%name%Ada\\tL%\n*end_leaf* 1-1\n*leaf* 1-2\nHi %recall%name%\n*end_leaf* 1-2\n*end_constant* 1",
			want: "Hi Ada\tL",
		},
		{
			name: "next resolves at loop end",
			body: "*random* 1 1 *repeat* 0 4 1 *repeatNoDoubles*\n*leaf* 1-1\nA %current%-%next%1%;\n*end_leaf* 1-1\n*end_random* 1",
			want: "A 0-4;",
		},
		{
			name: "next resolves on each change",
			body: "*random* 1 2 *repeat* 0 3 1 *repeatNoDoubles* *repeatDifferentDouble* 0\n*leaf* 1-1\n%current%-%next%1%;\n*end_leaf* 1-1\n*leaf* 1-2\n%current%-%next%1%;\n*end_leaf* 1-2\n*end_random* 1",
			want: "0-1;1-2;2-3;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, err := generateOne(t, tt.body, 7)
			if err != nil {
				t.Fatalf("Failed to generate: %v", err)
			}
			if c.text.String() != tt.want {
				t.Errorf("Expected text %q, got %q", tt.want, c.text.String())
			}
		})
	}
}

func TestGenerateRangeDecisions(t *testing.T) {
	body := "*random* 1 1 *repeat* 0 6 2\n*leaf* 1-1\nx\n*end_leaf* 1-1\n*end_random* 1"
	c, res, err := generateOne(t, body, 1)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	want := []string{"1-iter0", "1-iter2", "1-iter4"}
	if diff := cmp.Diff(want, keys(res)); diff != "" {
		t.Errorf("Variable keys mismatch (-want +got):\n%s", diff)
	}

	if c.trace.String() != "doc\t0\t0\t0" {
		t.Errorf("Expected trace %q, got %q", "doc\t0\t0\t0", c.trace.String())
	}

	wantLog := strings.Repeat("*random* 1 1 *repeat* 0 6 2\n0\n", 3)
	if c.log.String() != wantLog {
		t.Errorf("Expected log %q, got %q", wantLog, c.log.String())
	}
}

func TestGenerateDependentFollowsMaster(t *testing.T) {
	body := `*constant* 1 2
*random* 1-1 2
*leaf* a
A
*end_leaf* a
*leaf* b
B
*end_leaf* b
*end_random* 1-1
*dependent* 1-2 2 *master* 1-1
*leaf* c
x
*end_leaf* c
*leaf* d
y
*end_leaf* d
*end_dependent* 1-2
*end_constant* 1`

	for seed := uint64(0); seed < 10; seed++ {
		c, res, err := generateOne(t, body, seed)
		if err != nil {
			t.Fatalf("Failed to generate: %v", err)
		}
		text := c.text.String()
		if text != "Ax" && text != "By" {
			t.Errorf("Expected Ax or By, got %q", text)
		}
		if diff := cmp.Diff([]string{"1-1", "1-2"}, keys(res)); diff != "" {
			t.Errorf("Variable keys mismatch (-want +got):\n%s", diff)
		}
		if res.Decisions[0].Choice != res.Decisions[1].Choice {
			t.Errorf("Expected dependent to mirror master, got %d and %d", res.Decisions[0].Choice, res.Decisions[1].Choice)
		}
	}
}

func TestGenerateBatchPlaceholders(t *testing.T) {
	g := New(mustParse(t, "*leaf* 1\n%batchpadded%/%numberofbatches% %resumepadded% %resumecountoverbatches%/%totalnumberofresumes%\n*end_leaf* 1"))
	c := &captured{}
	_, err := g.Generate(NewBatch(2, 12, 3), Document{Name: "doc", Index: 2}, c.output())
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	want := "02/12 2 5/36"
	if c.text.String() != want {
		t.Errorf("Expected %q, got %q", want, c.text.String())
	}
}

func TestMatchDifferent(t *testing.T) {
	g := New(mustParse(t, strings.Replace(threeWay, "%s", "*matchDifferent*", 1)), WithRand(NewSeeded(3)))
	batch := NewBatch(1, 1, 4)

	seen := make(map[int]bool)
	for i := 1; i <= 3; i++ {
		res, err := g.Generate(batch, Document{Name: "doc" + strconv.Itoa(i), Index: i}, Output{})
		if err != nil {
			t.Fatalf("Failed to generate document %d: %v", i, err)
		}
		choice := res.Decisions[0].Choice
		if seen[choice] {
			t.Errorf("Choice %d was reused by document %d", choice, i)
		}
		seen[choice] = true
	}

	_, err := g.Generate(batch, Document{Name: "doc4", Index: 4}, Output{})
	requireKind(t, err, template.Exhausted, -19)

	var tmplErr *Error
	if errors.As(err, &tmplErr) && tmplErr.Document != 4 {
		t.Errorf("Expected error for document 4, got %d", tmplErr.Document)
	}
}

func TestMatchSame(t *testing.T) {
	g := New(mustParse(t, strings.Replace(threeWay, "%s", "*matchSame*", 1)), WithRand(NewSeeded(5)))
	batch := NewBatch(1, 1, 3)

	var first string
	for i := 1; i <= 3; i++ {
		var text bytes.Buffer
		_, err := g.Generate(batch, Document{Name: "doc", Index: i}, Output{Text: &text})
		if err != nil {
			t.Fatalf("Failed to generate document %d: %v", i, err)
		}
		if i == 1 {
			first = text.String()
			continue
		}
		if text.String() != first {
			t.Errorf("Expected document %d to match %q, got %q", i, first, text.String())
		}
	}
}

func TestMatchMaxSelections(t *testing.T) {
	g := New(mustParse(t, strings.Replace(threeWay, "%s", "*matchMaxSelectionsPerSubPoint* 2", 1)), WithRand(NewSeeded(11)))
	batch := NewBatch(1, 1, 6)

	for i := 1; i <= 6; i++ {
		_, err := g.Generate(batch, Document{Name: "doc", Index: i}, Output{})
		if err != nil {
			t.Fatalf("Failed to generate document %d: %v", i, err)
		}
	}

	want := map[int]int{0: 2, 1: 2, 2: 2}
	if diff := cmp.Diff(want, batch.Selections("1")); diff != "" {
		t.Errorf("Selections mismatch (-want +got):\n%s", diff)
	}

	_, err := g.Generate(batch, Document{Name: "doc", Index: 7}, Output{})
	requireKind(t, err, template.Exhausted, -57)
}

func TestRepeatNever(t *testing.T) {
	body := strings.Replace(threeWay, "%s", "*repeat* 0 3 1 *repeatNever*", 1)
	for seed := uint64(0); seed < 10; seed++ {
		_, res, err := generateOne(t, body, seed)
		if err != nil {
			t.Fatalf("Failed to generate: %v", err)
		}
		seen := make(map[int]bool)
		for _, d := range res.Decisions {
			if seen[d.Choice] {
				t.Errorf("Seed %d: choice %d repeated", seed, d.Choice)
			}
			seen[d.Choice] = true
		}
	}

	_, _, err := generateOne(t, strings.Replace(threeWay, "%s", "*repeat* 0 4 1 *repeatNever*", 1), 1)
	requireKind(t, err, template.Exhausted, -24)
}

func TestRepeatSame(t *testing.T) {
	body := strings.Replace(threeWay, "%s", "*repeat* 0 5 1 *repeatSame*", 1)
	c, res, err := generateOne(t, body, 9)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	for _, d := range res.Decisions {
		if d.Choice != res.Decisions[0].Choice {
			t.Errorf("Expected every pass to choose %d, got %d", res.Decisions[0].Choice, d.Choice)
		}
	}
	if len(c.text.String()) != 5 {
		t.Errorf("Expected 5 characters of text, got %q", c.text.String())
	}
}

func TestMinimumAndMaximumEntries(t *testing.T) {
	tests := []struct {
		name    string
		mods    string
		changes int
	}{
		{name: "minimum forces changes", mods: "*repeat* 0 4 1 *minimumNumberOfEntries* 4", changes: 4},
		{name: "maximum pins after one", mods: "*repeat* 0 4 1 *maximumNumberOfEntries* 1", changes: 1},
		{name: "different double always kept", mods: "*repeat* 0 4 1 *repeatDifferentDouble* 100", changes: 1},
		{name: "different double never kept", mods: "*repeat* 0 4 1 *repeatDifferentDouble* 0", changes: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 10; seed++ {
				_, res, err := generateOne(t, strings.Replace(threeWay, "%s", tt.mods, 1), seed)
				if err != nil {
					t.Fatalf("Failed to generate: %v", err)
				}
				changes := 0
				for i, d := range res.Decisions {
					if i == 0 || d.Choice != res.Decisions[i-1].Choice {
						changes++
					}
				}
				if changes != tt.changes {
					t.Errorf("Seed %d: expected %d distinct entries, got %d", seed, tt.changes, changes)
				}
			}
		})
	}
}

// The master never picks its first subsection, so the one-subsection dependent cannot follow.
const dependentTooShort = `*constant* 1 2
*random* 1-1 3 *nonUniformFirstSubPoint* 0
*leaf* a
A
*end_leaf* a
*leaf* b
B
*end_leaf* b
*leaf* c
C
*end_leaf* c
*end_random* 1-1
*dependent* 1-2 1 *master* 1-1
*leaf* d
D
*end_leaf* d
*end_dependent* 1-2
*end_constant* 1`

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind template.Kind
		code int
	}{
		{
			name: "range placeholder outside repeat",
			body: "*leaf* 1\n%current%\n*end_leaf* 1",
			kind: template.Misplaced,
			code: -29,
		},
		{
			name: "recall of unknown name",
			body: "*leaf* 1\n%recall%nope%\n*end_leaf* 1",
			kind: template.Unresolvable,
			code: -34,
		},
		{
			name: "constant declares too many",
			body: "*constant* 1 3\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*leaf* 1-2\nB\n*end_leaf* 1-2\n*end_constant* 1",
			kind: template.Unbalanced,
			code: -3,
		},
		{
			name: "constant declares too few",
			body: "*constant* 1 1\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*leaf* 1-2\nB\n*end_leaf* 1-2\n*end_constant* 1",
			kind: template.Unbalanced,
			code: -13,
		},
		{
			name: "missing end leaf",
			body: "*leaf* 1\nA",
			kind: template.Unbalanced,
			code: -11,
		},
		{
			name: "empty range",
			body: "*random* 1 1 *repeat* 5 0 1\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*end_random* 1",
			kind: template.Malformed,
			code: -25,
		},
		{
			name: "zero interval",
			body: "*random* 1 1 *repeat* 0 5 0\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*end_random* 1",
			kind: template.Malformed,
			code: -25,
		},
		{
			name: "range above the pass limit",
			body: strings.Replace(threeWay, "%s", "*repeat* 0 1e11 1", 1),
			kind: template.Malformed,
			code: -60,
		},
		{
			name: "infinite range",
			body: strings.Replace(threeWay, "%s", "*repeat* 0 inf 1", 1),
			kind: template.Malformed,
			code: -60,
		},
		{
			name: "range too large for an int",
			body: strings.Replace(threeWay, "%s", "*repeat* 0 1e30 1", 1),
			kind: template.Malformed,
			code: -60,
		},
		{
			name: "exclusive modifiers",
			body: strings.Replace(threeWay, "%s", "*matchSame* *matchDifferent*", 1),
			kind: template.Conflict,
			code: -20,
		},
		{
			name: "dependent before master",
			body: "*dependent* 1 1 *master* 9\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*end_dependent* 1",
			kind: template.Unresolvable,
			code: -26,
		},
		{
			name: "dependent without master",
			body: "*dependent* 1 1\n*leaf* 1-1\nA\n*end_leaf* 1-1\n*end_dependent* 1",
			kind: template.Malformed,
			code: -59,
		},
		{
			name: "master choice beyond dependent count",
			body: dependentTooShort,
			kind: template.Unresolvable,
			code: -28,
		},
		{
			name: "unresolved next",
			body: "*random* 1 1 *repeat* 0 1 1\n*leaf* 1-1\n%next%zzz%\n*end_leaf* 1-1\n*end_random* 1",
			kind: template.Unresolved,
			code: -40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, err := generateOne(t, tt.body, 1)
			requireKind(t, err, tt.kind, tt.code)
			if !strings.HasSuffix(c.trace.String(), "\t-1") {
				t.Errorf("Expected trace to end with -1, got %q", c.trace.String())
			}
		})
	}
}

func TestSeededRunsRepeat(t *testing.T) {
	body := strings.Replace(threeWay, "%s", "*repeat* 0 10 1", 1)
	a, _, err := generateOne(t, body, 42)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	b, _, err := generateOne(t, body, 42)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if a.text.String() != b.text.String() {
		t.Errorf("Expected identical text for the same seed, got %q and %q", a.text.String(), b.text.String())
	}
}

func TestWriteCSV(t *testing.T) {
	res := Result{
		Document: Document{Name: "doc", Index: 1},
		Batch:    1,
		Batches:  2,
		PerBatch: 3,
		Decisions: []Decision{
			{VariableKey: "1", Choice: 1},
			{VariableKey: "1-1-iter0", Choice: 0},
		},
	}

	var buf bytes.Buffer
	err := WriteCSV(&buf, res)
	if err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	want := "filename,batch,numberOfBatches,resume,numberOfResumesPerBatch,v1,v1_1_iter0\ndoc,1,2,1,3,2,1\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestMatchOnlyOneEver(t *testing.T) {
	body := strings.Replace(threeWay, "%s", "*repeat* 0 2 1 *matchOnlyOneEver*", 1)
	for seed := uint64(0); seed < 10; seed++ {
		g := New(mustParse(t, body), WithRand(NewSeeded(seed)))
		batch := NewBatch(1, 1, 2)

		used := make(map[int]int)
		for i := 1; i <= 2; i++ {
			res, err := g.Generate(batch, Document{Name: "doc", Index: i}, Output{})
			if err != nil {
				t.Fatalf("Seed %d: failed to generate document %d: %v", seed, i, err)
			}
			for _, d := range res.Decisions {
				if owner, ok := used[d.Choice]; ok && owner != i {
					t.Errorf("Seed %d: choice %d used by documents %d and %d", seed, d.Choice, owner, i)
				}
				used[d.Choice] = i
			}
		}
	}

	g := New(mustParse(t, strings.Replace(threeWay, "%s", "*matchOnlyOneEver*", 1)), WithRand(NewSeeded(4)))
	batch := NewBatch(1, 1, 4)
	for i := 1; i <= 3; i++ {
		_, err := g.Generate(batch, Document{Name: "doc", Index: i}, Output{})
		if err != nil {
			t.Fatalf("Failed to generate document %d: %v", i, err)
		}
	}

	_, err := g.Generate(batch, Document{Name: "doc", Index: 4}, Output{})
	requireKind(t, err, template.Exhausted, -36)
}

func TestNonUniformFirstSubPoint(t *testing.T) {
	tests := []struct {
		name      string
		pct       string
		wantFirst bool
	}{
		{name: "never first", pct: "0", wantFirst: false},
		{name: "always first", pct: "100", wantFirst: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Replace(threeWay, "%s", "*nonUniformFirstSubPoint* "+tt.pct, 1)
			for seed := uint64(0); seed < 20; seed++ {
				_, res, err := generateOne(t, body, seed)
				if err != nil {
					t.Fatalf("Failed to generate: %v", err)
				}
				if got := res.Decisions[0].Choice == 0; got != tt.wantFirst {
					t.Errorf("Seed %d: expected first subpoint %v, got choice %d", seed, tt.wantFirst, res.Decisions[0].Choice)
				}
			}
		})
	}
}

func TestMatchSameConflicts(t *testing.T) {
	tests := []struct {
		name string
		mods string
		pin  int
		code int
	}{
		{
			name: "repeatSame disagrees with matched document",
			mods: "*repeat* 0 2 1 *matchSame* *repeatSame* *nonUniformFirstSubPoint* 100",
			pin:  2,
			code: -16,
		},
		{
			name: "repeatNever already used matched choice",
			mods: "*repeat* 0 2 1 *matchSame* *repeatNever* *nonUniformFirstSubPoint* 100",
			pin:  0,
			code: -17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(mustParse(t, strings.Replace(threeWay, "%s", tt.mods, 1)), WithRand(NewSeeded(1)))
			batch := NewBatch(1, 1, 2)
			// A matched document already chose tt.pin on the second pass only.
			batch.matchSame["1-iter1"] = tt.pin

			_, err := g.Generate(batch, Document{Name: "doc", Index: 2}, Output{})
			requireKind(t, err, template.Exhausted, tt.code)
		})
	}
}

func TestRedundantModifiersDropped(t *testing.T) {
	t.Run("matchOnlyOneEver drops max selections", func(t *testing.T) {
		var logs bytes.Buffer
		body := strings.Replace(threeWay, "%s", "*repeat* 0 4 1 *matchMaxSelectionsPerSubPoint* 1 *matchOnlyOneEver*", 1)
		g := New(mustParse(t, body), WithRand(NewSeeded(2)), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		batch := NewBatch(1, 1, 1)

		// Four passes over three subsections would exhaust a limit of one.
		_, err := g.Generate(batch, Document{Name: "doc", Index: 1}, Output{})
		if err != nil {
			t.Fatalf("Failed to generate: %v", err)
		}
		if got := batch.Selections("1"); len(got) != 0 {
			t.Errorf("Expected no selection counts, got %v", got)
		}
		if n := strings.Count(logs.String(), "ignoring matchMaxSelectionsPerSubPoint"); n != 1 {
			t.Errorf("Expected one warning, got %d in %q", n, logs.String())
		}
	})

	t.Run("matchOnlyOneEver drops matchDifferent", func(t *testing.T) {
		var logs bytes.Buffer
		body := strings.Replace(threeWay, "%s", "*matchOnlyOneEver* *matchDifferent*", 1)
		g := New(mustParse(t, body), WithRand(NewSeeded(2)), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		batch := NewBatch(1, 1, 3)

		for i := 1; i <= 3; i++ {
			_, err := g.Generate(batch, Document{Name: "doc", Index: i}, Output{})
			if err != nil {
				t.Fatalf("Failed to generate document %d: %v", i, err)
			}
		}
		if len(batch.matchDifferent) != 0 {
			t.Errorf("Expected no matchDifferent history, got %v", batch.matchDifferent)
		}
		if n := strings.Count(logs.String(), "ignoring matchDifferent"); n != 1 {
			t.Errorf("Expected one warning over three documents, got %d in %q", n, logs.String())
		}
	})
}

const nestedRepeat = `*random* 1 1 *repeat* 0 2 1
*random* 1-1 3 *repeat* 0 3 1
*leaf* 1-1-1
A
*end_leaf* 1-1-1
*leaf* 1-1-2
B
*end_leaf* 1-1-2
*leaf* 1-1-3
C
*end_leaf* 1-1-3
*end_random* 1-1
*end_random* 1`

func TestTraceFieldsMatchLogPairs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "leaf only", body: "*leaf* 1\nA\n*end_leaf* 1"},
		{name: "repeat", body: strings.Replace(threeWay, "%s", "*repeat* 0 5 1", 1)},
		{name: "nested repeat", body: nestedRepeat},
		{name: "failed dependent", body: dependentTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, res, _ := generateOne(t, tt.body, 6)

			fields := strings.Split(c.trace.String(), "\t")[1:]
			if n := len(fields); n > 0 && fields[n-1] == "-1" {
				fields = fields[:n-1]
			}

			var lines []string
			if c.log.Len() > 0 {
				lines = strings.Split(strings.TrimSuffix(c.log.String(), "\n"), "\n")
			}

			if len(lines) != 2*len(fields) {
				t.Fatalf("Expected %d log lines for %d trace fields, got %d", 2*len(fields), len(fields), len(lines))
			}
			if len(fields) != len(res.Decisions) {
				t.Errorf("Expected %d decisions, got %d", len(fields), len(res.Decisions))
			}
			for i, f := range fields {
				if lines[2*i+1] != f {
					t.Errorf("Pair %d: log index %q, trace %q", i, lines[2*i+1], f)
				}
			}
		})
	}
}

func TestRangeLenAndAt(t *testing.T) {
	r := Range{Start: 1, End: 2, Interval: 0.25}
	if r.Len() != 4 {
		t.Errorf("Expected 4 passes, got %d", r.Len())
	}
	if r.At(3) != 1.75 {
		t.Errorf("Expected 1.75, got %v", r.At(3))
	}

	huge := Range{Start: 0, End: MaxIterations + 1, Interval: 1}
	if huge.Len() != 0 {
		t.Errorf("Expected 0 passes above the limit, got %d", huge.Len())
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		n, limit int
		want     string
	}{
		{7, 120, "007"},
		{12, 12, "12"},
		{3, 9, "3"},
	}

	for _, tt := range tests {
		if got := Pad(tt.n, tt.limit); got != tt.want {
			t.Errorf("Pad(%d, %d): expected %s, got %s", tt.n, tt.limit, tt.want, got)
		}
	}
}
