// Package vcs abstracts the version control systems weld checks source
// out of. Each VCS is a Handler registered under its scheme; checkout
// URLs name the scheme explicitly, "git+https://example.com/repo.git".
package vcs

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/shell"
)

// Checkout describes one checkout: where its source lives and where it
// comes from.
type Checkout struct {
	// Name is the checkout's name.
	Name string

	// Path is the working copy's directory below src/, as a
	// slash-separated relative path. Empty means the checkout name.
	Path string

	// RepoURL is the repository URL with the scheme prefix already
	// stripped.
	RepoURL string

	// Revision pins the checkout to a specific revision. Empty or
	// "HEAD" means the branch head, unpinned.
	Revision string

	// Branch selects a branch. Empty means the VCS default.
	Branch string

	// Dir is the absolute directory of the working copy.
	Dir string
}

// Pinned reports whether the checkout names a fixed revision.
func (c *Checkout) Pinned() bool {
	return c.Revision != "" && c.Revision != "HEAD"
}

// SrcPath returns the checkout's directory below src/.
func (c *Checkout) SrcPath() string {
	if c.Path != "" {
		return c.Path
	}
	return c.Name
}

// Handler implements the operations weld needs from one version
// control system. The runner passed in carries the working directory,
// environment, and logger; for CheckOut it is rooted where the new
// working copy's parent is, for everything else in the working copy.
type Handler interface {
	// Scheme is the URL prefix this handler serves, e.g. "git".
	Scheme() string

	// CheckOut clones the repository into co.Dir.
	CheckOut(ctx context.Context, r *shell.Runner, co *Checkout) error

	// Pull fetches upstream changes without disturbing local edits.
	Pull(ctx context.Context, r *shell.Runner, co *Checkout) error

	// Update brings the working copy up to date with upstream, merging
	// where the VCS supports it. Merge conflicts are reported, not
	// fatal.
	Update(ctx context.Context, r *shell.Runner, co *Checkout) error

	// Commit records local changes in the local repository, or in
	// centralized systems does nothing because committing is pushing.
	Commit(ctx context.Context, r *shell.Runner, co *Checkout) error

	// Push publishes committed changes upstream.
	Push(ctx context.Context, r *shell.Runner, co *Checkout) error

	// MustUpdateToCommit reports whether the working copy has to be up
	// to date before a commit can succeed. True for centralized
	// systems like Subversion.
	MustUpdateToCommit() bool
}

// SplitURL splits "scheme+rest" into its VCS scheme and repository
// URL. The first "+" is the separator, so "bzr+ssh://host/x" is the
// bzr scheme with an ssh URL.
func SplitURL(repo string) (scheme, url string, err error) {
	scheme, url, ok := strings.Cut(repo, "+")
	if !ok || scheme == "" || url == "" {
		return "", "", errors.New(errors.ErrCodeBadDescription,
			"repository %q is not of the form vcs+url", repo)
	}
	return scheme, url, nil
}

// Registry maps schemes to handlers. Registration happens while the
// build description loads; lookups happen during builds.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a registry with the built-in handlers (git, bzr,
// svn) already registered.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register(&Git{})
	r.Register(&Bazaar{})
	r.Register(&Subversion{})
	return r
}

// Register adds a handler under its scheme, replacing any previous
// handler for the same scheme. Registering the same handler twice is
// harmless.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Scheme()] = h
}

// Lookup returns the handler for a scheme. Unknown schemes fail with an
// error naming the schemes that are available.
func (r *Registry) Lookup(scheme string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[scheme]; ok {
		return h, nil
	}
	return nil, errors.New(errors.ErrCodeUnknownScheme,
		"no VCS handler for %q (known: %s)", scheme, strings.Join(r.schemesLocked(), ", "))
}

// Schemes returns the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemesLocked()
}

func (r *Registry) schemesLocked() []string {
	out := make([]string, 0, len(r.handlers))
	for s := range r.handlers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
