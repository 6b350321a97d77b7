// Package hostpkg installs packages on the build host itself, for the
// tools and libraries a workspace needs from the host OS rather than
// from source.
package hostpkg

import (
	"context"
	"strings"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/shell"
)

// AptGet is a build.Builder that ensures a set of Debian packages is
// installed on the host. It acts when its label reaches the built tag
// and treats every other tag as a no-op, so the surrounding lifecycle
// rules stay cheap.
//
// Already-installed packages are never reinstalled: each is probed
// with dpkg-query first, and a single apt-get run installs whatever
// subset is missing.
type AptGet struct {
	// Packages are the OS package names to ensure.
	Packages []string

	// Probe reports whether one package is installed. Nil means the
	// dpkg-query probe; tests replace it.
	Probe func(ctx context.Context, bc *build.Context, pkg string) (bool, error)

	// Install installs the given packages. Nil means apt-get under
	// sudo; tests replace it.
	Install func(ctx context.Context, bc *build.Context, pkgs []string) error
}

// New creates an apt-get builder for the given packages.
func New(packages ...string) *AptGet {
	return &AptGet{Packages: packages}
}

func dpkgProbe(ctx context.Context, bc *build.Context, pkg string) (bool, error) {
	r := &shell.Runner{Env: bc.Env, Logger: bc.Logger}
	out, err := r.Output(ctx, "dpkg-query", "-W", "-f=${db:Status-Abbrev}", pkg)
	if err != nil {
		if errors.Is(err, errors.ErrCodeCommandFailed) {
			// dpkg-query exits non-zero for unknown packages.
			return false, nil
		}
		return false, err
	}
	return strings.HasPrefix(out, "ii"), nil
}

func aptInstall(ctx context.Context, bc *build.Context, pkgs []string) error {
	r := &shell.Runner{Env: bc.Env, Logger: bc.Logger}
	args := append([]string{"apt-get", "install", "-y"}, pkgs...)
	return r.Run(ctx, "sudo", args...)
}

func (a *AptGet) probe(ctx context.Context, bc *build.Context, pkg string) (bool, error) {
	if a.Probe != nil {
		return a.Probe(ctx, bc, pkg)
	}
	return dpkgProbe(ctx, bc, pkg)
}

func (a *AptGet) install(ctx context.Context, bc *build.Context, pkgs []string) error {
	if a.Install != nil {
		return a.Install(ctx, bc, pkgs)
	}
	return aptInstall(ctx, bc, pkgs)
}

// BuildLabel installs the missing subset of a.Packages when the label
// reaches built. All other tags are no-ops.
func (a *AptGet) BuildLabel(ctx context.Context, bc *build.Context, target label.Label) error {
	if target.Tag != label.TagBuilt {
		return nil
	}

	var missing []string
	for _, pkg := range a.Packages {
		installed, err := a.probe(ctx, bc, pkg)
		if err != nil {
			return err
		}
		if !installed {
			missing = append(missing, pkg)
		}
	}
	if len(missing) == 0 {
		bc.Logger.Debug("host packages already installed", "label", target.String())
		return nil
	}
	return a.install(ctx, bc, missing)
}

// Simple registers a package that just installs host packages: a built
// rule driven by apt-get, with the rest of the lifecycle passing
// through.
func Simple(rs *build.Ruleset, name string, packages ...string) error {
	return Medium(rs, name, []string{""}, packages...)
}

// Medium is Simple for several roles at once: each role gets the same
// apt-get rule, so any of them can be depended on.
func Medium(rs *build.Ruleset, name string, roles []string, packages ...string) error {
	a := New(packages...)
	for _, role := range roles {
		target, err := label.New(label.KindPackage, name, role, label.TagBuilt, "")
		if err != nil {
			return err
		}
		if err := rs.Add(build.NewRule(target, a)); err != nil {
			return err
		}
	}
	return nil
}

var _ build.Builder = (*AptGet)(nil)
