package generator

import (
	"math"
	"strconv"
	"strings"

	"github.com/nikogura/resume-randomizer/pkg/template"
)

// MaxIterations caps the passes of one repeating section per document.
const MaxIterations = 100000

// Range is the half-open iteration range of a repeating Random section.
type Range struct {
	Start    float64
	End      float64
	Interval float64
	// Integer is true when start, end and interval were all written as integers.
	Integer    bool
	startFloat bool
	endFloat   bool
}

// parseRange reads the three *repeat* arguments.
func parseRange(tag template.Tag, args []string) (r Range, err error) {
	codes := []int{-30, -31, -32}
	names := []string{"start", "end", "interval"}
	values := make([]float64, 3)
	isFloat := make([]bool, 3)

	for i, arg := range args {
		n, intErr := strconv.Atoi(arg)
		if intErr == nil {
			values[i] = float64(n)
			continue
		}
		f, floatErr := strconv.ParseFloat(arg, 64)
		if floatErr != nil {
			err = newError(template.Malformed, codes[i], tag, "", "the repeat %s value %q is neither an integer nor a decimal", names[i], arg)
			return r, err
		}
		values[i] = f
		isFloat[i] = true
	}

	r = Range{
		Start:      values[0],
		End:        values[1],
		Interval:   values[2],
		Integer:    !isFloat[0] && !isFloat[1] && !isFloat[2],
		startFloat: isFloat[0],
		endFloat:   isFloat[1],
	}

	steps := r.steps()
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps > MaxIterations {
		err = newError(template.Malformed, -60, tag, "", "invalid repeat range %v to %v by %v: it must give a finite number of passes, at most %d", args[0], args[1], args[2], MaxIterations)
		return r, err
	}

	if r.Len() < 1 {
		err = newError(template.Malformed, -25, tag, "", "invalid repeat range %v to %v by %v: the interval must not be zero and start plus some multiple of the interval must reach or pass the end", args[0], args[1], args[2])
		return r, err
	}

	return r, err
}

// steps is the unclamped pass count; NaN or infinite for degenerate ranges.
func (r Range) steps() (steps float64) {
	if r.Interval == 0 {
		return steps
	}
	steps = math.Ceil((r.End - r.Start) / r.Interval)
	return steps
}

// Len is the number of iterations, zero for an empty or unbounded range.
func (r Range) Len() (n int) {
	steps := r.steps()
	if steps > 0 && steps <= MaxIterations {
		n = int(steps)
	}
	return n
}

// At is the value of the i-th iteration.
func (r Range) At(i int) (v float64) {
	v = r.Start + float64(i)*r.Interval
	return v
}

// StartText is the %start% substitution.
func (r Range) StartText() (s string) {
	s = formatNumber(r.Start, r.startFloat)
	return s
}

// EndText is the %end% substitution.
func (r Range) EndText() (s string) {
	s = formatNumber(r.End, r.endFloat)
	return s
}

// Format renders an iteration value the way the range was written.
func (r Range) Format(v float64) (s string) {
	s = formatNumber(v, !r.Integer)
	return s
}

// formatNumber prints integers plainly and decimals with 12 significant digits,
// keeping a trailing ".0" on integral decimals.
func formatNumber(v float64, decimal bool) (s string) {
	if !decimal {
		s = strconv.FormatInt(int64(v), 10)
		return s
	}
	s = strconv.FormatFloat(v, 'g', 12, 64)
	if !strings.ContainsAny(s, ".eEN") && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
