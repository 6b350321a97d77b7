package vcs

import (
	"context"
	"path/filepath"

	"github.com/weldbuild/weld/pkg/shell"
)

// Subversion drives svn working copies. Centralized: committing is
// publishing, so Commit does nothing, Push runs svn commit, and the
// working copy must be up to date before it can commit.
type Subversion struct{}

func (Subversion) Scheme() string { return "svn" }

func (Subversion) CheckOut(ctx context.Context, r *shell.Runner, co *Checkout) error {
	args := []string{"checkout"}
	if co.Pinned() {
		args = append(args, "-r", co.Revision)
	}
	args = append(args, co.RepoURL, filepath.Base(co.Dir))
	return r.Run(ctx, "svn", args...)
}

func (Subversion) Pull(ctx context.Context, r *shell.Runner, co *Checkout) error {
	return r.Run(ctx, "svn", "update")
}

func (Subversion) Update(ctx context.Context, r *shell.Runner, co *Checkout) error {
	// Conflicts leave the working copy for the user to resolve.
	ok, err := r.RunAllowFailure(ctx, "svn", "update")
	if err != nil {
		return err
	}
	if !ok {
		r.Log().Warn("svn update reported conflicts, resolve by hand", "checkout", co.Name)
	}
	return nil
}

func (Subversion) Commit(ctx context.Context, r *shell.Runner, co *Checkout) error {
	// svn has no local commit. Push does the committing.
	return nil
}

func (Subversion) Push(ctx context.Context, r *shell.Runner, co *Checkout) error {
	return r.Run(ctx, "svn", "commit", "-m", "committed by weld")
}

func (Subversion) MustUpdateToCommit() bool { return true }

var _ Handler = (*Subversion)(nil)
