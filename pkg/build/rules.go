package build

import (
	"sort"

	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
)

// Rule binds one target label to the prerequisites that must be
// satisfied before it and the Builder that achieves it. A Rule with no
// Builder is a grouping node: it is satisfied as soon as its
// prerequisites are.
type Rule struct {
	Target  label.Label
	Builder Builder

	prereqs map[string]label.Label
}

// NewRule creates a rule for target with the given builder. The builder
// may be nil for pure grouping rules.
func NewRule(target label.Label, b Builder) *Rule {
	return &Rule{
		Target:  target,
		Builder: b,
		prereqs: make(map[string]label.Label),
	}
}

// Depend adds a prerequisite. Adding the same label twice is a no-op.
func (r *Rule) Depend(pre label.Label) {
	r.prereqs[pre.String()] = pre
}

// Prereqs returns the rule's prerequisites in sorted order.
func (r *Rule) Prereqs() []label.Label {
	out := make([]label.Label, 0, len(r.prereqs))
	for _, l := range r.prereqs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return label.Compare(out[i], out[j]) < 0 })
	return out
}

// HasPrereq reports whether pre is among the rule's prerequisites.
func (r *Rule) HasPrereq(pre label.Label) bool {
	_, ok := r.prereqs[pre.String()]
	return ok
}

// Ruleset is the whole prerequisite graph of a workspace, keyed by
// target label. It is populated while the workspace description loads
// and only read afterwards; it is not safe for concurrent mutation.
type Ruleset struct {
	rules map[string]*Rule
}

// NewRuleset creates an empty ruleset.
func NewRuleset() *Ruleset {
	return &Ruleset{rules: make(map[string]*Rule)}
}

func checkTarget(target label.Label) error {
	if target.IsTemporary() {
		return errors.New(errors.ErrCodeBadRule,
			"transient label %s cannot be a rule target", target)
	}
	if target.Name == "*" || target.Tag == "*" {
		return errors.New(errors.ErrCodeBadRule,
			"wildcard label %s cannot be a rule target", target)
	}
	return nil
}

// Add registers a rule. If a rule for the same target already exists,
// its prerequisites are merged into the existing rule; a second
// non-nil builder for the same target is a description error.
func (rs *Ruleset) Add(r *Rule) error {
	if err := checkTarget(r.Target); err != nil {
		return err
	}
	key := r.Target.String()
	existing, ok := rs.rules[key]
	if !ok {
		rs.rules[key] = r
		return nil
	}
	if r.Builder != nil {
		if existing.Builder != nil {
			return errors.New(errors.ErrCodeBadRule,
				"two builders registered for %s", key)
		}
		existing.Builder = r.Builder
	}
	for _, pre := range r.Prereqs() {
		existing.Depend(pre)
	}
	return nil
}

// RuleFor returns the rule for target. With create set, a missing rule
// is created (builder-less) and registered; otherwise a missing rule is
// an error.
func (rs *Ruleset) RuleFor(target label.Label, create bool) (*Rule, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	if r, ok := rs.rules[target.String()]; ok {
		return r, nil
	}
	if !create {
		return nil, errors.New(errors.ErrCodeRuleNotFound,
			"no rule builds %s", target)
	}
	r := NewRule(target, nil)
	rs.rules[target.String()] = r
	return r, nil
}

// AddDependency records that target requires pre, creating a
// builder-less rule for target if none exists yet.
func (rs *Ruleset) AddDependency(target, pre label.Label) error {
	r, err := rs.RuleFor(target, true)
	if err != nil {
		return err
	}
	r.Depend(pre)
	return nil
}

// Targets returns every rule target in sorted order.
func (rs *Ruleset) Targets() []label.Label {
	out := make([]label.Label, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r.Target)
	}
	sort.Slice(out, func(i, j int) bool { return label.Compare(out[i], out[j]) < 0 })
	return out
}

// Match returns the targets matched by pattern, in sorted order. "*" in
// the pattern's name, role, or domain matches anything; kind and tag
// match exactly, except that a "*" tag matches any tag.
func (rs *Ruleset) Match(pattern label.Label) []label.Label {
	var out []label.Label
	for _, r := range rs.rules {
		t := r.Target
		if t.Kind != pattern.Kind {
			continue
		}
		if pattern.Name != "*" && pattern.Name != t.Name {
			continue
		}
		if pattern.Role != "*" && pattern.Role != t.Role {
			continue
		}
		if pattern.Domain != "*" && pattern.Domain != t.Domain {
			continue
		}
		if pattern.Tag != "*" && pattern.Tag != t.Tag {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return label.Compare(out[i], out[j]) < 0 })
	return out
}

// Len returns the number of rules.
func (rs *Ruleset) Len() int { return len(rs.rules) }
