package template

import (
	"strconv"
	"strings"
)

// TagKind is the variant of a structural line.
type TagKind int

const (
	// TagLeaf opens a block of literal text.
	TagLeaf TagKind = iota + 1
	// TagRandom opens a one-of-N choice.
	TagRandom
	// TagConstant opens an all-of-N sequence.
	TagConstant
	// TagDependent opens a choice mirroring a previous Random choice.
	TagDependent
	// TagEndLeaf closes a Leaf.
	TagEndLeaf
	// TagEndRandom closes a Random section.
	TagEndRandom
	// TagEndConstant closes a Constant section.
	TagEndConstant
	// TagEndDependent closes a Dependent section.
	TagEndDependent
)

//nolint:gochecknoglobals // fixed tag vocabulary
var tagTokens = map[string]TagKind{
	"*leaf*":          TagLeaf,
	"*random*":        TagRandom,
	"*constant*":      TagConstant,
	"*dependent*":     TagDependent,
	"*end_leaf*":      TagEndLeaf,
	"*end_random*":    TagEndRandom,
	"*end_constant*":  TagEndConstant,
	"*end_dependent*": TagEndDependent,
}

func (k TagKind) String() (s string) {
	for token, kind := range tagTokens {
		if kind == k {
			s = strings.Trim(token, "*")
			return s
		}
	}
	s = "unknown"
	return s
}

// IsStart reports whether the kind opens a section.
func (k TagKind) IsStart() (start bool) {
	start = k >= TagLeaf && k <= TagDependent
	return start
}

// End returns the closing kind for a start kind.
func (k TagKind) End() (end TagKind) {
	if k.IsStart() {
		end = k + 4
	}
	return end
}

// Token is the literal first token for the kind, e.g. "*end_random*".
func (k TagKind) Token() (token string) {
	for t, kind := range tagTokens {
		if kind == k {
			token = t
			return token
		}
	}
	return token
}

// Modifier names recognised on Random and Dependent start tags.
const (
	ModRepeat                        = "repeat"
	ModRepeatSame                    = "repeatSame"
	ModRepeatNever                   = "repeatNever"
	ModRepeatNoDoubles               = "repeatNoDoubles"
	ModRepeatDifferentDouble         = "repeatDifferentDouble"
	ModNonUniformFirstSubPoint       = "nonUniformFirstSubPoint"
	ModMinimumNumberOfEntries        = "minimumNumberOfEntries"
	ModMaximumNumberOfEntries        = "maximumNumberOfEntries"
	ModMatchSame                     = "matchSame"
	ModMatchDifferent                = "matchDifferent"
	ModMatchOnlyOneEver              = "matchOnlyOneEver"
	ModMatchMaxSelectionsPerSubPoint = "matchMaxSelectionsPerSubPoint"
	ModMaster                        = "master"
)

// modifierArity is the number of argument tokens each modifier consumes.
//
//nolint:gochecknoglobals // fixed modifier vocabulary
var modifierArity = map[string]int{
	ModRepeat:                        3,
	ModRepeatSame:                    0,
	ModRepeatNever:                   0,
	ModRepeatNoDoubles:               0,
	ModRepeatDifferentDouble:         1,
	ModNonUniformFirstSubPoint:       1,
	ModMinimumNumberOfEntries:        1,
	ModMaximumNumberOfEntries:        1,
	ModMatchSame:                     0,
	ModMatchDifferent:                0,
	ModMatchOnlyOneEver:              0,
	ModMatchMaxSelectionsPerSubPoint: 1,
	ModMaster:                        1,
}

// Modifier is one recognised modifier with its raw argument tokens.
type Modifier struct {
	Name string
	Args []string
}

// Tag is a scanned structural line.
type Tag struct {
	Kind      TagKind
	Label     string
	Count     int
	Modifiers []Modifier
	Line      string
	LineNo    int
}

// Modifier returns the first modifier with the given name.
func (t Tag) Modifier(name string) (mod Modifier, ok bool) {
	for _, m := range t.Modifiers {
		if m.Name == name {
			mod = m
			ok = true
			return mod, ok
		}
	}
	return mod, ok
}

// Has reports whether the tag carries the named modifier.
func (t Tag) Has(name string) (has bool) {
	_, has = t.Modifier(name)
	return has
}

// ScanTag parses a structural line. Unknown modifier tokens are ignored, as are
// modifiers missing their arguments.
func ScanTag(line string, lineNo int) (tag Tag, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		err = Errorf(Malformed, -6, lineNo, line, "expected a start or end tag such as '*random* 3-2 4'; make sure the subsection counts are right and there are no blank lines outside Leaf sections")
		return tag, err
	}

	kind, known := tagTokens[fields[0]]
	if !known {
		err = Errorf(Malformed, -9, lineNo, line, "unrecognised tag %q; the start tags are *leaf*, *random*, *constant* and *dependent*", fields[0])
		return tag, err
	}

	tag = Tag{
		Kind:   kind,
		Label:  fields[1],
		Line:   line,
		LineNo: lineNo,
	}

	if kind == TagLeaf || !kind.IsStart() {
		return tag, err
	}

	if len(fields) < 3 {
		err = Errorf(Malformed, -7, lineNo, line, "a %s start tag must give the number of subsections after the label (e.g. *random* 1-1-5-6 8)", kind)
		return tag, err
	}

	tag.Count, err = strconv.Atoi(fields[2])
	if err != nil || !isDigits(fields[2]) {
		err = Errorf(Malformed, -8, lineNo, line, "the number of subsections %q is not a number", fields[2])
		return tag, err
	}

	for i := 3; i < len(fields); i++ {
		token := fields[i]
		if len(token) < 3 || token[0] != '*' || token[len(token)-1] != '*' {
			continue
		}
		name := token[1 : len(token)-1]
		arity, recognised := modifierArity[name]
		if !recognised || i+arity >= len(fields) {
			continue
		}
		mod := Modifier{Name: name}
		if arity > 0 {
			mod.Args = append([]string(nil), fields[i+1:i+1+arity]...)
			i += arity
		}
		tag.Modifiers = append(tag.Modifiers, mod)
	}

	return tag, err
}

// IsEnd reports whether line is the end tag of the given kind and label.
func IsEnd(line string, kind TagKind, label string) (end bool) {
	fields := strings.Fields(line)
	end = len(fields) >= 2 && fields[0] == kind.Token() && fields[1] == label
	return end
}

func isDigits(s string) (ok bool) {
	if s == "" {
		return ok
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ok
		}
	}
	ok = true
	return ok
}
