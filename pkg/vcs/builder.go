package vcs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/domain"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/observability"
	"github.com/weldbuild/weld/pkg/shell"
)

// CheckoutBuilder brings a checkout label to its requested tag by
// driving the checkout's VCS handler. It implements build.Builder.
type CheckoutBuilder struct {
	co      Checkout
	handler Handler
}

// NewBuilder resolves repo ("vcs+url") against the registry and
// returns a builder for a checkout of that repository. revision may be
// empty or "HEAD" for the branch head; branch may be empty for the VCS
// default.
func NewBuilder(reg *Registry, name, repo, revision, branch string) (*CheckoutBuilder, error) {
	scheme, url, err := SplitURL(repo)
	if err != nil {
		return nil, err
	}
	h, err := reg.Lookup(scheme)
	if err != nil {
		return nil, err
	}
	return &CheckoutBuilder{
		co:      Checkout{Name: name, RepoURL: url, Revision: revision, Branch: branch},
		handler: h,
	}, nil
}

// Checkout returns a copy of the checkout description.
func (b *CheckoutBuilder) Checkout() Checkout { return b.co }

// SetDir places the working copy at a directory below src/ other than
// the checkout's name, e.g. "libs/zlib". The path is slash-separated.
func (b *CheckoutBuilder) SetDir(dir string) { b.co.Path = dir }

// srcDir returns the src directory the checkout lives under, honoring
// the label's domain.
func srcDir(rootDir string, l label.Label) (string, error) {
	dir := rootDir
	if l.Domain != "" {
		sub, err := domain.Subpath(l.Domain)
		if err != nil {
			return "", err
		}
		dir = filepath.Join(dir, sub)
	}
	return filepath.Join(dir, "src"), nil
}

// BuildLabel maps the label's tag to the matching VCS operation.
// Tags outside the checkout vocabulary it can act on are no-ops.
func (b *CheckoutBuilder) BuildLabel(ctx context.Context, bc *build.Context, target label.Label) error {
	if target.Kind != label.KindCheckout {
		return errors.New(errors.ErrCodeInternal,
			"checkout builder invoked for %s", target)
	}

	src, err := srcDir(bc.RootDir, target)
	if err != nil {
		return err
	}
	co := b.co
	co.Dir = filepath.Join(src, filepath.FromSlash(co.SrcPath()))

	op, run, err := b.operation(target.Tag, src, &co, bc)
	if err != nil || run == nil {
		return err
	}

	hooks := observability.VCS()
	hooks.OnOperation(ctx, b.handler.Scheme(), op, co.Name)
	start := time.Now()
	err = run(ctx)
	hooks.OnOperationDone(ctx, b.handler.Scheme(), op, co.Name, time.Since(start), err)
	return err
}

func (b *CheckoutBuilder) operation(tag label.Tag, src string, co *Checkout, bc *build.Context) (string, func(context.Context) error, error) {
	inTree := &shell.Runner{Dir: co.Dir, Env: bc.Env, Logger: bc.Logger}

	switch tag {
	case label.TagCheckedOut:
		return "checkout", func(ctx context.Context) error {
			if _, err := os.Stat(co.Dir); err == nil {
				bc.Logger.Debug("already checked out", "checkout", co.Name)
				return nil
			}
			// Nested checkout dirs clone from their parent directory.
			parentDir := filepath.Dir(co.Dir)
			if err := os.MkdirAll(parentDir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", parentDir)
			}
			parent := &shell.Runner{Dir: parentDir, Env: bc.Env, Logger: bc.Logger}
			return b.handler.CheckOut(ctx, parent, co)
		}, nil

	case label.TagPulled:
		return "pull", func(ctx context.Context) error {
			return b.handler.Pull(ctx, inTree, co)
		}, nil

	case label.TagUpToDate:
		return "update", func(ctx context.Context) error {
			return b.handler.Update(ctx, inTree, co)
		}, nil

	case label.TagChangesCommitted:
		return "commit", func(ctx context.Context) error {
			if b.handler.MustUpdateToCommit() {
				if err := b.handler.Update(ctx, inTree, co); err != nil {
					return err
				}
			}
			return b.handler.Commit(ctx, inTree, co)
		}, nil

	case label.TagChangesPushed:
		return "push", func(ctx context.Context) error {
			return b.handler.Push(ctx, inTree, co)
		}, nil
	}

	return "", nil, nil
}

var _ build.Builder = (*CheckoutBuilder)(nil)
