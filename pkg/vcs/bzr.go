package vcs

import (
	"context"
	"path/filepath"

	"github.com/weldbuild/weld/pkg/shell"
)

// Bazaar drives bzr working copies. Distributed like git, so a commit
// does not need the working copy to be up to date.
type Bazaar struct{}

func (Bazaar) Scheme() string { return "bzr" }

func (Bazaar) CheckOut(ctx context.Context, r *shell.Runner, co *Checkout) error {
	args := []string{"branch"}
	if co.Pinned() {
		args = append(args, "-r", co.Revision)
	}
	args = append(args, co.RepoURL, filepath.Base(co.Dir))
	return r.Run(ctx, "bzr", args...)
}

func (Bazaar) Pull(ctx context.Context, r *shell.Runner, co *Checkout) error {
	args := []string{"pull"}
	if co.Pinned() {
		args = append(args, "-r", co.Revision)
	}
	return r.Run(ctx, "bzr", args...)
}

func (Bazaar) Update(ctx context.Context, r *shell.Runner, co *Checkout) error {
	// bzr update exits non-zero on conflicts; the working copy is
	// still updated, with conflict markers left for the user.
	ok, err := r.RunAllowFailure(ctx, "bzr", "update")
	if err != nil {
		return err
	}
	if !ok {
		r.Log().Warn("bzr update reported conflicts, resolve by hand", "checkout", co.Name)
	}
	return nil
}

func (Bazaar) Commit(ctx context.Context, r *shell.Runner, co *Checkout) error {
	// Nothing to commit exits non-zero; that is not a failure.
	_, err := r.RunAllowFailure(ctx, "bzr", "commit", "-m", "committed by weld")
	return err
}

func (Bazaar) Push(ctx context.Context, r *shell.Runner, co *Checkout) error {
	return r.Run(ctx, "bzr", "push", co.RepoURL)
}

func (Bazaar) MustUpdateToCommit() bool { return false }

var _ Handler = (*Bazaar)(nil)
