package build

import (
	"sort"
	"strings"

	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
)

// Closure expands the targets (resolving wildcards against the ruleset)
// and returns the transitive prerequisite closure as rules, unordered.
// Every label in the closure must have a rule; a wildcard matching
// nothing and a prerequisite nobody builds are both errors.
func Closure(rs *Ruleset, targets []label.Label) (map[string]*Rule, error) {
	var queue []label.Label
	for _, t := range targets {
		if t.Name == "*" || t.Role == "*" || t.Domain == "*" || t.Tag == "*" {
			matched := rs.Match(t)
			if len(matched) == 0 {
				return nil, errors.New(errors.ErrCodeRuleNotFound,
					"nothing matches %s", t)
			}
			queue = append(queue, matched...)
			continue
		}
		queue = append(queue, t)
	}

	closure := make(map[string]*Rule)
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		key := l.String()
		if _, seen := closure[key]; seen {
			continue
		}
		r, err := rs.RuleFor(l, false)
		if err != nil {
			return nil, err
		}
		closure[key] = r
		queue = append(queue, r.Prereqs()...)
	}
	return closure, nil
}

// Order computes a deterministic build order for the targets: the
// transitive closure of their prerequisites, topologically sorted so
// every label comes after everything it depends on. Ties break by label
// ordering, so the same graph always yields the same sequence.
//
// A dependency cycle is rejected before anything would execute, naming
// the labels on the cycle. A rule with neither a builder nor
// prerequisites is rejected as unbuildable.
func Order(rs *Ruleset, targets []label.Label) ([]label.Label, error) {
	closure, err := Closure(rs, targets)
	if err != nil {
		return nil, err
	}

	for key, r := range closure {
		if r.Builder == nil && len(r.prereqs) == 0 {
			return nil, errors.New(errors.ErrCodeBadRule,
				"%s has no builder and no prerequisites", key)
		}
	}

	// Kahn's algorithm with a sorted ready set for determinism.
	indeg := make(map[string]int, len(closure))
	dependents := make(map[string][]string, len(closure))
	for key, r := range closure {
		for _, pre := range r.Prereqs() {
			pk := pre.String()
			indeg[key]++
			dependents[pk] = append(dependents[pk], key)
		}
	}

	var ready []string
	for key := range closure {
		if indeg[key] == 0 {
			ready = append(ready, key)
		}
	}
	sort.Strings(ready)

	order := make([]label.Label, 0, len(closure))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		order = append(order, closure[key].Target)
		released := false
		for _, dep := range dependents[key] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(order) < len(closure) {
		return nil, errors.New(errors.ErrCodeCycle,
			"dependency cycle: %s", strings.Join(findCycle(closure, indeg), " -> "))
	}
	return order, nil
}

// findCycle walks prerequisite edges among the nodes Kahn could not
// release until it closes a loop, and returns the loop's labels.
func findCycle(closure map[string]*Rule, indeg map[string]int) []string {
	remaining := make(map[string]bool)
	for key, n := range indeg {
		if n > 0 {
			remaining[key] = true
		}
	}
	var start string
	for key := range remaining {
		if start == "" || key < start {
			start = key
		}
	}

	seen := make(map[string]int)
	var path []string
	cur := start
	for {
		if at, ok := seen[cur]; ok {
			cycle := append([]string(nil), path[at:]...)
			sort.Strings(cycle)
			return cycle
		}
		seen[cur] = len(path)
		path = append(path, cur)
		next := ""
		for _, pre := range closure[cur].Prereqs() {
			if remaining[pre.String()] {
				next = pre.String()
				break
			}
		}
		if next == "" {
			// Should not happen: every remaining node has an
			// unreleased prerequisite.
			return path
		}
		cur = next
	}
}
