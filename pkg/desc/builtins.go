package desc

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/hostpkg"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/makebuild"
	"github.com/weldbuild/weld/pkg/vcs"
	"github.com/weldbuild/weld/pkg/workspace"
)

// registration is the state the builtins mutate while a description
// executes.
type registration struct {
	loader *Loader
	desc   *Description
}

func (r *registration) builtins() starlark.StringDict {
	return starlark.StringDict{
		"checkout":     starlark.NewBuiltin("checkout", r.checkout),
		"package":      starlark.NewBuiltin("package", r.pkg),
		"deploy":       starlark.NewBuiltin("deploy", r.deploy),
		"depend":       starlark.NewBuiltin("depend", r.depend),
		"aptget":       starlark.NewBuiltin("aptget", r.aptget),
		"register_vcs": starlark.NewBuiltin("register_vcs", r.registerVCS),
	}
}

// stringList converts a Starlark list of strings.
func stringList(what string, v *starlark.List) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	out := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		s, ok := starlark.AsString(v.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: element %d is not a string", what, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// chainLifecycle adds rules for every tag of the unit's lifecycle,
// driven by b, with each tag depending on the one before it.
func chainLifecycle(rs *build.Ruleset, kind label.Kind, name, role string, b build.Builder) error {
	var prev label.Label
	for i, tag := range label.Lifecycle(kind) {
		l, err := label.New(kind, name, role, tag, "")
		if err != nil {
			return err
		}
		if err := rs.Add(build.NewRule(l, b)); err != nil {
			return err
		}
		if i > 0 {
			if err := rs.AddDependency(l, prev); err != nil {
				return err
			}
		}
		prev = l
	}
	return nil
}

// checkout(name, repo, rev="", branch="", dir="") declares a checkout.
// repo is "vcs+url"; rev pins a revision ("" or "HEAD" means the
// branch head); dir places the working copy below src/ at a path other
// than the checkout's name.
func (r *registration) checkout(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, repo, rev, branch, dir string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name, "repo", &repo, "rev?", &rev, "branch?", &branch, "dir?", &dir); err != nil {
		return nil, err
	}

	b, err := vcs.NewBuilder(r.loader.registry, name, repo, rev, branch)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		b.SetDir(dir)
	}
	if err := chainLifecycle(r.desc.Rules, label.KindCheckout, name, "", b); err != nil {
		return nil, err
	}
	r.desc.Checkouts = append(r.desc.Checkouts, b.Checkout())
	return starlark.None, nil
}

// package(name, role="", checkout="", deps=[], makefile="") declares a
// make-built package. checkout defaults to the package name; deps are
// "name{role}" package specs that must be fully installed before this
// package configures.
func (r *registration) pkg(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, role, checkout, makefile string
	var deps *starlark.List
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name, "role?", &role, "checkout?", &checkout,
		"deps?", &deps, "makefile?", &makefile); err != nil {
		return nil, err
	}
	if checkout == "" {
		checkout = name
	}

	m := makebuild.New(checkout)
	m.Makefile = makefile
	if err := chainLifecycle(r.desc.Rules, label.KindPackage, name, role, m); err != nil {
		return nil, err
	}

	preconfig, err := label.New(label.KindPackage, name, role, label.TagPreConfig, "")
	if err != nil {
		return nil, err
	}
	srcReady, err := label.New(label.KindCheckout, checkout, "", label.TagCheckedOut, "")
	if err != nil {
		return nil, err
	}
	if err := r.desc.Rules.AddDependency(preconfig, srcReady); err != nil {
		return nil, err
	}

	depSpecs, err := stringList("deps", deps)
	if err != nil {
		return nil, err
	}
	configured, err := label.New(label.KindPackage, name, role, label.TagConfigured, "")
	if err != nil {
		return nil, err
	}
	for _, spec := range depSpecs {
		depName, depRole, err := workspace.ParsePackageSpec(spec)
		if err != nil {
			return nil, err
		}
		dep, err := label.New(label.KindPackage, depName, depRole, label.TagPostInstalled, "")
		if err != nil {
			return nil, err
		}
		if err := r.desc.Rules.AddDependency(configured, dep); err != nil {
			return nil, err
		}
	}
	return starlark.None, nil
}

// deploy(name, packages=[]) declares a deployment satisfied once every
// listed package is fully installed.
func (r *registration) deploy(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var packages *starlark.List
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name, "packages", &packages); err != nil {
		return nil, err
	}

	deployed, err := label.New(label.KindDeployment, name, "", label.TagDeployed, "")
	if err != nil {
		return nil, err
	}
	specs, err := stringList("packages", packages)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		pkgName, pkgRole, err := workspace.ParsePackageSpec(spec)
		if err != nil {
			return nil, err
		}
		dep, err := label.New(label.KindPackage, pkgName, pkgRole, label.TagPostInstalled, "")
		if err != nil {
			return nil, err
		}
		if err := r.desc.Rules.AddDependency(deployed, dep); err != nil {
			return nil, err
		}
	}
	return starlark.None, nil
}

// depend(target, prereq) adds one dependency between two labels given
// in their text form.
func (r *registration) depend(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target, prereq string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"target", &target, "prereq", &prereq); err != nil {
		return nil, err
	}

	tl, err := label.Parse(target)
	if err != nil {
		return nil, err
	}
	pl, err := label.Parse(prereq)
	if err != nil {
		return nil, err
	}
	if err := r.desc.Rules.AddDependency(tl, pl); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// aptget(name, packages=[], roles=[]) declares a package whose build
// installs host OS packages instead of compiling anything.
func (r *registration) aptget(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var packages, roles *starlark.List
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name, "packages", &packages, "roles?", &roles); err != nil {
		return nil, err
	}

	pkgs, err := stringList("packages", packages)
	if err != nil {
		return nil, err
	}
	roleNames, err := stringList("roles", roles)
	if err != nil {
		return nil, err
	}
	if len(roleNames) == 0 {
		return starlark.None, hostpkg.Simple(r.desc.Rules, name, pkgs...)
	}
	return starlark.None, hostpkg.Medium(r.desc.Rules, name, roleNames, pkgs...)
}

// aliasHandler exposes an existing handler under another scheme.
type aliasHandler struct {
	vcs.Handler
	scheme string
}

func (a *aliasHandler) Scheme() string { return a.scheme }

// register_vcs(scheme, like) makes repository URLs with the given
// scheme use the handler already registered under like.
func (r *registration) registerVCS(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var scheme, like string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"scheme", &scheme, "like", &like); err != nil {
		return nil, err
	}

	h, err := r.loader.registry.Lookup(like)
	if err != nil {
		return nil, err
	}
	r.loader.registry.Register(&aliasHandler{Handler: h, scheme: scheme})
	return starlark.None, nil
}
