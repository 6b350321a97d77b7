// Package makebuild builds packages by delegating to a checkout's
// Makefile. Each lifecycle tag maps to a make target; the Makefile
// finds its directories through WELD_* environment variables.
package makebuild

import (
	"context"
	"os"
	"path/filepath"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/domain"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/shell"
)

// Make is a build.Builder that runs make in a checkout's source
// directory. The tag decides the make target: configured runs "make
// config", built runs plain "make", installed runs "make install",
// clean and distclean run the targets of the same name. preconfig and
// postinstalled are no-ops.
type Make struct {
	// Checkout is the source directory name under src/.
	Checkout string

	// Makefile overrides the Makefile name. Empty uses make's default.
	Makefile string

	// Run overrides command execution. Nil runs make for real; tests
	// replace it.
	Run func(ctx context.Context, r *shell.Runner, args []string) error
}

// New creates a make builder over the named checkout.
func New(checkout string) *Make {
	return &Make{Checkout: checkout}
}

// Dirs are the directories a package build works with.
type Dirs struct {
	// Src is the checkout's source directory.
	Src string
	// Obj is the package's object directory, obj/<name>/<role>.
	Obj string
	// Install is the role's install directory, install/<role>.
	Install string
}

// DirsFor computes the conventional directories for a package label
// below the workspace root, honoring the label's domain.
func DirsFor(rootDir, checkout string, l label.Label) (Dirs, error) {
	base := rootDir
	if l.Domain != "" {
		sub, err := domain.Subpath(l.Domain)
		if err != nil {
			return Dirs{}, err
		}
		base = filepath.Join(base, sub)
	}
	return Dirs{
		Src:     filepath.Join(base, "src", checkout),
		Obj:     filepath.Join(base, "obj", l.Name, l.Role),
		Install: filepath.Join(base, "install", l.Role),
	}, nil
}

func target(tag label.Tag) (string, bool) {
	switch tag {
	case label.TagConfigured:
		return "config", true
	case label.TagBuilt:
		return "", true
	case label.TagInstalled:
		return "install", true
	case label.TagClean:
		return "clean", true
	case label.TagDistClean:
		return "distclean", true
	}
	return "", false
}

// BuildLabel runs the make target for the label's tag.
func (m *Make) BuildLabel(ctx context.Context, bc *build.Context, l label.Label) error {
	if l.Kind != label.KindPackage {
		return errors.New(errors.ErrCodeInternal, "make builder invoked for %s", l)
	}
	tgt, ok := target(l.Tag)
	if !ok {
		return nil
	}

	dirs, err := DirsFor(bc.RootDir, m.Checkout, l)
	if err != nil {
		return err
	}
	for _, dir := range []string{dirs.Obj, dirs.Install} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", dir)
		}
	}

	env := bc.Env
	if env == nil {
		env = os.Environ()
	}
	env = append(append([]string(nil), env...),
		"WELD_ROOT="+bc.RootDir,
		"WELD_SRC="+dirs.Src,
		"WELD_OBJ="+dirs.Obj,
		"WELD_INSTALL="+dirs.Install,
		"WELD_LABEL="+l.String(),
	)

	r := &shell.Runner{Dir: dirs.Src, Env: env, Logger: bc.Logger}
	args := []string{}
	if m.Makefile != "" {
		args = append(args, "-f", m.Makefile)
	}
	if tgt != "" {
		args = append(args, tgt)
	}
	if m.Run != nil {
		return m.Run(ctx, r, args)
	}
	return r.Run(ctx, "make", args...)
}

var _ build.Builder = (*Make)(nil)
