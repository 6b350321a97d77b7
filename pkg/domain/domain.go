// Package domain parses and renders nested sub-workspace names.
//
// A domain names a nested build tree inside an enclosing workspace. The
// grammar nests with parentheses:
//
//	domain := ident ( '(' domain ')' )?
//
// so "a" is a top-level domain, "a(b)" is b nested in a, and "a(b(c))" is
// c nested in b nested in a. Sibling groups at one nesting level, such as
// "a(b)(c)", are not allowed. On disk a domain lives under a "domains"
// directory per level: Subpath("a(b)") is "domains/a/domains/b".
package domain

import (
	"path/filepath"
	"strings"

	"github.com/weldbuild/weld/pkg/errors"
)

// Split breaks a domain name into its hierarchy, outermost first.
// Malformed names fail with a user-actionable error naming the specific
// grammar violation: mismatched parentheses or sibling sub-domains.
func Split(name string) ([]string, error) {
	if !strings.Contains(name, "(") {
		return []string{name}, nil
	}

	if strings.Contains(name, ")(") {
		return nil, errors.New(errors.ErrCodeInvalidDomain,
			"domain name %q has 'sibling' sub-domains", name)
	}

	parts := strings.Split(name, "(")

	closing := len(parts) - 1
	last := parts[len(parts)-1]
	inner := strings.TrimRight(last, ")")
	if len(last)-len(inner) != closing || strings.Contains(inner, ")") {
		return nil, errors.New(errors.ErrCodeInvalidDomain,
			"domain name %q has mis-matched parentheses", name)
	}

	parts[len(parts)-1] = inner
	return parts, nil
}

// Join is the inverse of Split: it renders a hierarchy, outermost first,
// back into the parenthesized text form.
func Join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteByte('(')
		b.WriteString(p)
	}
	b.WriteString(strings.Repeat(")", len(parts)-1))
	return b.String()
}

// Subpath returns the filesystem path of a domain below its workspace
// root: one "domains/<name>" component per nesting level.
func Subpath(name string) (string, error) {
	parts, err := Split(name)
	if err != nil {
		return "", err
	}
	elems := make([]string, 0, 2*len(parts))
	for _, p := range parts {
		elems = append(elems, "domains", p)
	}
	return filepath.Join(elems...), nil
}
