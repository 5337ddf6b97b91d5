package generator

import (
	"github.com/nikogura/resume-randomizer/pkg/template"
)

// choose picks the subsection for one enter-pass of a Random section and records it
// in every history map. same reports whether the pick equals the previous pick for
// the label in this document.
func (g *Generator) choose(s *docState, tag template.Tag, p Policy, key string) (choice int, same bool, err error) {
	label := tag.Label
	fail := func(kind template.Kind, code int, format string, args ...interface{}) (e *Error) {
		e = newError(kind, code, tag, key, format, args...)
		e.Document = s.doc.Index
		return e
	}

	all := make([]int, tag.Count)
	for i := range all {
		all[i] = i
	}
	if len(all) == 0 {
		err = fail(template.Malformed, -58, "a Random section needs at least one subsection")
		return choice, same, err
	}
	candidates := all

	if p.MatchDifferent {
		if used, ok := s.batch.matchDifferent[key]; ok {
			candidates = without(candidates, used)
			if len(candidates) == 0 {
				err = fail(template.Exhausted, -19, "matchDifferent ran out of choices: every subsection was already used by a matched document at this point; add choices, match fewer documents or repeat less")
				return choice, same, err
			}
		}
	}

	if p.MaxSelectionsPerSubPoint > 0 {
		counts := s.batch.maxSelections[label]
		kept := make([]int, 0, len(candidates))
		for _, c := range candidates {
			if counts[c] < p.MaxSelectionsPerSubPoint {
				kept = append(kept, c)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			err = fail(template.Exhausted, -57, "matchMaxSelectionsPerSubPoint ran out of choices: every subsection was already chosen %d times in this batch", p.MaxSelectionsPerSubPoint)
			return choice, same, err
		}
	}

	if p.MatchOnlyOneEver {
		for docIndex, used := range s.batch.onlyOneEver[label] {
			if docIndex != s.doc.Index {
				candidates = without(candidates, used)
			}
		}
		if len(candidates) == 0 {
			err = fail(template.Exhausted, -36, "matchOnlyOneEver ran out of choices: every subsection was already used by another matched document; add choices, match fewer documents or repeat less")
			return choice, same, err
		}
	}

	if p.RepeatNever {
		if used, ok := s.repeatNever[label]; ok {
			filtered := without(candidates, used)
			if len(filtered) == 0 {
				if len(without(all, used)) == 0 {
					err = fail(template.Exhausted, -24, "repeatNever ran out of choices: every subsection was already used in this document; add choices or repeat less")
					return choice, same, err
				}
				err = fail(template.Exhausted, -15, "cannot obey both repeatNever and the match constraints: the subsections unused in this document were all taken by matched documents; add choices, match fewer documents or repeat less")
				return choice, same, err
			}
			candidates = filtered
		}
	}

	differentDouble := p.RepeatDifferentDouble
	pct := p.RepeatDifferentDoublePct
	if tr, ok := s.ranges[label]; ok {
		if p.MinimumNumberOfEntries-tr.differed >= tr.total-tr.done {
			differentDouble = true
			pct = -1
		}
		if p.MaximumNumberOfEntries > 0 && p.MaximumNumberOfEntries <= tr.differed {
			differentDouble = true
			pct = 101
		}
	}

	candidates = g.shuffle(candidates, p)

	last, hadLast := s.lastChoice[label]
	pinned, hasPin := s.batch.matchSame[key]
	prev, hasPrev := s.repeatSame[label]

	switch {
	case p.MatchSame && hasPin:
		if p.RepeatSame && hasPrev && prev != pinned {
			err = fail(template.Exhausted, -16, "cannot obey both matchSame and repeatSame: this document already chose %d but a matched document chose %d on this iteration; make the repeating parent matchSame or drop one constraint", prev, pinned)
			return choice, same, err
		}
		if p.RepeatNever && contains(s.repeatNever[label], pinned) {
			err = fail(template.Exhausted, -17, "cannot obey both matchSame and repeatNever: a matched document chose %d on this iteration but this document already used it; make the repeating parent matchSame or drop one constraint", pinned)
			return choice, same, err
		}
		choice = pinned
	case p.RepeatSame && hasPrev:
		if !contains(candidates, prev) {
			err = fail(template.Exhausted, -14, "cannot obey both repeatSame and the match constraints: this document's fixed choice %d was taken by a matched document; make the repeating parent matchSame or drop one constraint", prev)
			return choice, same, err
		}
		choice = prev
	case differentDouble && hadLast && contains(candidates, last):
		if g.rng.Float64()*100 < pct {
			choice = last
			break
		}
		candidates = append(without(candidates, []int{last}), last)
		choice = candidates[0]
	default:
		choice = candidates[0]
	}

	g.record(s, p, label, key, choice)

	same = hadLast && last == choice
	s.lastChoice[label] = choice
	if tr, ok := s.ranges[label]; ok {
		tr.done++
		if !same {
			tr.differed++
		}
	}

	g.logger.Debug("random choice", "label", label, "key", key, "document", s.doc.Index, "choice", choice, "same", same)

	return choice, same, err
}

// shuffle orders the candidates uniformly, then moves subpoint 0 to the front or back
// when a non-uniform first subpoint is configured.
func (g *Generator) shuffle(candidates []int, p Policy) (shuffled []int) {
	shuffled = append([]int(nil), candidates...)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if !p.NonUniformFirstSubPoint || !contains(shuffled, 0) {
		return shuffled
	}

	shuffled = without(shuffled, []int{0})
	if g.rng.Float64()*100 < p.NonUniformFirstSubPointPct {
		shuffled = append([]int{0}, shuffled...)
		return shuffled
	}
	shuffled = append(shuffled, 0)
	return shuffled
}

func (g *Generator) record(s *docState, p Policy, label, key string, choice int) {
	if p.RepeatSame {
		s.repeatSame[label] = choice
	}
	if p.MatchSame {
		s.batch.matchSame[key] = choice
	}
	if p.MatchDifferent {
		s.batch.matchDifferent[key] = append(s.batch.matchDifferent[key], choice)
	}
	if p.RepeatNever {
		s.repeatNever[label] = append(s.repeatNever[label], choice)
	}
	if p.MatchOnlyOneEver {
		byDoc, ok := s.batch.onlyOneEver[label]
		if !ok {
			byDoc = make(map[int][]int)
			s.batch.onlyOneEver[label] = byDoc
		}
		byDoc[s.doc.Index] = append(byDoc[s.doc.Index], choice)
	}
	if p.MaxSelectionsPerSubPoint > 0 {
		counts, ok := s.batch.maxSelections[label]
		if !ok {
			counts = make(map[int]int)
			s.batch.maxSelections[label] = counts
		}
		counts[choice]++
	}
}
