// Package label defines the identifier model for buildable units.
//
// A [Label] names one unit (a source checkout, a package in a role, a
// deployment) at one lifecycle state. The unit's identity is the 4-tuple
// (kind, name, role, domain); the tag distinguishes lifecycle points of
// the same unit. The canonical text form is
//
//	kind:name{role}/tag
//
// with an optional parenthesized domain qualifier after the kind:
//
//	package:(net(wifi))firmware{arm}/built
//
// Tags are drawn from a fixed per-kind vocabulary (see [ValidTag]); a
// label carrying a tag outside its kind's vocabulary is rejected at
// construction time.
package label

import (
	"fmt"
	"strings"

	"github.com/weldbuild/weld/pkg/errors"
)

// Label identifies one buildable unit in one lifecycle state.
// Labels are small value types and are compared with ==; two labels are
// the same unit when SameUnit reports true, and fully equal when their
// tags also match.
type Label struct {
	Kind   Kind
	Name   string
	Role   string // optional; empty means role-independent
	Tag    Tag
	Domain string // optional nested-domain path; empty means top level
}

// New constructs a validated Label. It fails with a system error when the
// kind is unknown or the tag is outside the kind's vocabulary, and with a
// user failure when the name or role contains reserved characters.
func New(kind Kind, name, role string, tag Tag, domain string) (Label, error) {
	if !ValidKind(kind) {
		return Label{}, errors.New(errors.ErrCodeUnknownKind, "unknown label kind %q", kind)
	}
	if !ValidTag(kind, tag) {
		return Label{}, errors.New(errors.ErrCodeUnknownTag, "tag %q is not valid for kind %q", tag, kind)
	}
	if err := checkComponent("name", name); err != nil {
		return Label{}, err
	}
	if role != "" {
		if err := checkComponent("role", role); err != nil {
			return Label{}, err
		}
	}
	return Label{Kind: kind, Name: name, Role: role, Tag: tag, Domain: domain}, nil
}

// checkComponent rejects empty components and the characters reserved by
// the textual label form. "*" is allowed as a whole-component wildcard.
func checkComponent(what, s string) error {
	if s == "" {
		return errors.New(errors.ErrCodeInvalidLabel, "label %s must not be empty", what)
	}
	if s == "*" {
		return nil
	}
	if strings.ContainsAny(s, ":/{}() \t") {
		return errors.New(errors.ErrCodeInvalidLabel, "label %s %q contains reserved characters", what, s)
	}
	return nil
}

// SameUnit reports whether l and other identify the same buildable unit,
// ignoring their tags.
func (l Label) SameUnit(other Label) bool {
	return l.Kind == other.Kind && l.Name == other.Name &&
		l.Role == other.Role && l.Domain == other.Domain
}

// WithTag returns a copy of l at a different lifecycle state.
func (l Label) WithTag(t Tag) Label {
	l.Tag = t
	return l
}

// IsTemporary reports whether l must never be stored beyond the scope of
// the current call.
func (l Label) IsTemporary() bool {
	return l.Tag == TagTemporary
}

// String renders the canonical text form.
func (l Label) String() string {
	var b strings.Builder
	b.WriteString(string(l.Kind))
	b.WriteByte(':')
	if l.Domain != "" {
		b.WriteByte('(')
		b.WriteString(l.Domain)
		b.WriteByte(')')
	}
	b.WriteString(l.Name)
	if l.Role != "" {
		b.WriteByte('{')
		b.WriteString(l.Role)
		b.WriteByte('}')
	}
	b.WriteByte('/')
	b.WriteString(string(l.Tag))
	return b.String()
}

// UnitString renders the unit identity without the tag, as used in user
// facing listings: name{role}, domain-qualified when present.
func (l Label) UnitString() string {
	s := l.Name
	if l.Role != "" {
		s += "{" + l.Role + "}"
	}
	if l.Domain != "" {
		s = "(" + l.Domain + ")" + s
	}
	return s
}

// Parse reads the canonical text form produced by [Label.String].
func Parse(s string) (Label, error) {
	kindPart, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Label{}, errors.New(errors.ErrCodeInvalidLabel, "label %q has no kind separator", s)
	}
	kind := Kind(kindPart)

	var domain string
	if strings.HasPrefix(rest, "(") {
		end := strings.LastIndex(rest, ")")
		if end < 0 {
			return Label{}, errors.New(errors.ErrCodeInvalidLabel, "label %q has an unterminated domain qualifier", s)
		}
		domain = rest[1:end]
		rest = rest[end+1:]
	}

	unit, tagPart, ok := strings.Cut(rest, "/")
	if !ok {
		return Label{}, errors.New(errors.ErrCodeInvalidLabel, "label %q has no tag separator", s)
	}

	name := unit
	var role string
	if open := strings.Index(unit, "{"); open >= 0 {
		if !strings.HasSuffix(unit, "}") {
			return Label{}, errors.New(errors.ErrCodeInvalidLabel, "label %q has an unterminated role", s)
		}
		name = unit[:open]
		role = unit[open+1 : len(unit)-1]
	}

	return New(kind, name, role, Tag(tagPart), domain)
}

// Compare orders labels deterministically: by kind, then domain, name,
// role and finally tag. It returns -1, 0 or +1.
func Compare(a, b Label) int {
	for _, p := range [][2]string{
		{string(a.Kind), string(b.Kind)},
		{a.Domain, b.Domain},
		{a.Name, b.Name},
		{a.Role, b.Role},
		{string(a.Tag), string(b.Tag)},
	} {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// MustNew is New for statically known labels; it panics on error.
// Intended for tests and for registration code evaluated at load time.
func MustNew(kind Kind, name, role string, tag Tag, domain string) Label {
	l, err := New(kind, name, role, tag, domain)
	if err != nil {
		panic(fmt.Sprintf("label.MustNew: %v", err))
	}
	return l
}
