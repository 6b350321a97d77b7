package vcs

import (
	"context"
	"path/filepath"

	"github.com/weldbuild/weld/pkg/shell"
)

// Git drives git working copies. Distributed: commits are local, push
// publishes them, so a commit never needs the working copy to be up to
// date first.
type Git struct{}

func (Git) Scheme() string { return "git" }

func (Git) CheckOut(ctx context.Context, r *shell.Runner, co *Checkout) error {
	args := []string{"clone"}
	if co.Branch != "" {
		args = append(args, "-b", co.Branch)
	}
	args = append(args, co.RepoURL, filepath.Base(co.Dir))
	if err := r.Run(ctx, "git", args...); err != nil {
		return err
	}
	if co.Pinned() {
		in := *r
		in.Dir = co.Dir
		return in.Run(ctx, "git", "checkout", co.Revision)
	}
	return nil
}

func (Git) Pull(ctx context.Context, r *shell.Runner, co *Checkout) error {
	return r.Run(ctx, "git", "fetch", "origin")
}

func (Git) Update(ctx context.Context, r *shell.Runner, co *Checkout) error {
	if co.Pinned() {
		if err := r.Run(ctx, "git", "fetch", "origin"); err != nil {
			return err
		}
		return r.Run(ctx, "git", "checkout", co.Revision)
	}
	ok, err := r.RunAllowFailure(ctx, "git", "pull", "--ff-only")
	if err != nil {
		return err
	}
	if !ok {
		r.Log().Warn("git pull could not fast-forward, resolve by hand", "checkout", co.Name)
	}
	return nil
}

func (Git) Commit(ctx context.Context, r *shell.Runner, co *Checkout) error {
	// Nothing to commit exits non-zero; that is not a failure.
	_, err := r.RunAllowFailure(ctx, "git", "commit", "-a", "-m", "committed by weld")
	return err
}

func (Git) Push(ctx context.Context, r *shell.Runner, co *Checkout) error {
	if co.Branch != "" {
		return r.Run(ctx, "git", "push", "origin", co.Branch)
	}
	return r.Run(ctx, "git", "push")
}

func (Git) MustUpdateToCommit() bool { return false }

var _ Handler = (*Git)(nil)
