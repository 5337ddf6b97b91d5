package generator

import (
	"log/slog"
	"strconv"

	"github.com/nikogura/resume-randomizer/pkg/template"
)

// Policy is the resolved set of selection modifiers on one Random start tag.
type Policy struct {
	Repeat                     bool
	Range                      Range
	RepeatSame                 bool
	RepeatNever                bool
	RepeatNoDoubles            bool
	RepeatDifferentDouble      bool
	RepeatDifferentDoublePct   float64
	NonUniformFirstSubPoint    bool
	NonUniformFirstSubPointPct float64
	MinimumNumberOfEntries     int
	MaximumNumberOfEntries     int
	MatchSame                  bool
	MatchDifferent             bool
	MatchOnlyOneEver           bool
	MaxSelectionsPerSubPoint   int
}

// exclusion is a pair of modifiers that cannot appear on the same tag.
type exclusion struct {
	a, b string
	code int
	bad  func(p Policy) bool
}

//nolint:gochecknoglobals // fixed exclusion table
var exclusions = []exclusion{
	{template.ModMatchOnlyOneEver, template.ModMatchSame, -35, func(p Policy) bool { return p.MatchOnlyOneEver && p.MatchSame }},
	{template.ModMatchDifferent, template.ModMatchSame, -20, func(p Policy) bool { return p.MatchDifferent && p.MatchSame }},
	{template.ModMatchMaxSelectionsPerSubPoint, template.ModMatchSame, -39, func(p Policy) bool { return p.MaxSelectionsPerSubPoint > 0 && p.MatchSame }},
	{template.ModMatchMaxSelectionsPerSubPoint, template.ModMatchDifferent, -54, func(p Policy) bool { return p.MaxSelectionsPerSubPoint > 0 && p.MatchDifferent }},
	{template.ModRepeatSame, template.ModRepeatNever, -21, func(p Policy) bool { return p.RepeatSame && p.RepeatNever }},
	{template.ModRepeatSame, template.ModRepeatDifferentDouble, -22, func(p Policy) bool { return p.RepeatSame && p.RepeatDifferentDouble }},
	{template.ModRepeatNever, template.ModRepeatDifferentDouble, -23, func(p Policy) bool { return p.RepeatNever && p.RepeatDifferentDouble }},
	{template.ModRepeatSame, template.ModMinimumNumberOfEntries + " > 1", -37, func(p Policy) bool { return p.RepeatSame && p.MinimumNumberOfEntries > 1 }},
}

// policy parses a Random tag once per template line, so redundancy warnings are
// logged once per run rather than on every visit.
func (g *Generator) policy(tag template.Tag) (p Policy, err error) {
	if cached, ok := g.policies[tag.LineNo]; ok {
		return cached, err
	}

	p, err = parsePolicy(tag, g.logger)
	if err != nil {
		return p, err
	}
	g.policies[tag.LineNo] = p

	return p, err
}

// parsePolicy interprets a Random tag's modifiers, rejecting exclusive combinations
// and dropping the weaker of redundant ones.
func parsePolicy(tag template.Tag, logger *slog.Logger) (p Policy, err error) {
	for _, mod := range tag.Modifiers {
		switch mod.Name {
		case template.ModRepeat:
			p.Repeat = true
			p.Range, err = parseRange(tag, mod.Args)
			if err != nil {
				return p, err
			}
		case template.ModRepeatSame:
			p.RepeatSame = true
		case template.ModRepeatNever:
			p.RepeatNever = true
		case template.ModRepeatNoDoubles:
			p.RepeatNoDoubles = true
		case template.ModRepeatDifferentDouble:
			p.RepeatDifferentDouble = true
			p.RepeatDifferentDoublePct, err = parsePercent(tag, mod)
			if err != nil {
				return p, err
			}
		case template.ModNonUniformFirstSubPoint:
			p.NonUniformFirstSubPoint = true
			p.NonUniformFirstSubPointPct, err = parsePercent(tag, mod)
			if err != nil {
				return p, err
			}
		case template.ModMinimumNumberOfEntries:
			p.MinimumNumberOfEntries, err = parseCount(tag, mod)
			if err != nil {
				return p, err
			}
		case template.ModMaximumNumberOfEntries:
			p.MaximumNumberOfEntries, err = parseCount(tag, mod)
			if err != nil {
				return p, err
			}
		case template.ModMatchSame:
			p.MatchSame = true
		case template.ModMatchDifferent:
			p.MatchDifferent = true
		case template.ModMatchOnlyOneEver:
			p.MatchOnlyOneEver = true
		case template.ModMatchMaxSelectionsPerSubPoint:
			p.MaxSelectionsPerSubPoint, err = parseCount(tag, mod)
			if err != nil {
				return p, err
			}
		}
	}

	for _, ex := range exclusions {
		if ex.bad(p) {
			err = newError(template.Conflict, ex.code, tag, "", "this Random tag specifies both %s and %s, which are exclusive; remove one of them", ex.a, ex.b)
			return p, err
		}
	}

	if p.MaxSelectionsPerSubPoint > 0 && p.MatchOnlyOneEver {
		logger.Warn("matchOnlyOneEver already limits every subpoint to one document; ignoring matchMaxSelectionsPerSubPoint",
			"label", tag.Label, "line", tag.LineNo)
		p.MaxSelectionsPerSubPoint = 0
	}

	if p.MatchOnlyOneEver && p.MatchDifferent {
		logger.Warn("matchOnlyOneEver implies matchDifferent; ignoring matchDifferent",
			"label", tag.Label, "line", tag.LineNo)
		p.MatchDifferent = false
	}

	return p, err
}

func parsePercent(tag template.Tag, mod template.Modifier) (pct float64, err error) {
	pct, err = strconv.ParseFloat(mod.Args[0], 64)
	if err != nil {
		err = newError(template.Malformed, -55, tag, "", "the %s percentage %q is not a number", mod.Name, mod.Args[0])
		return pct, err
	}
	return pct, err
}

func parseCount(tag template.Tag, mod template.Modifier) (n int, err error) {
	n, err = strconv.Atoi(mod.Args[0])
	if err != nil || n < 0 {
		err = newError(template.Malformed, -56, tag, "", "the %s value %q is not a non-negative integer", mod.Name, mod.Args[0])
		return n, err
	}
	return n, err
}
