// Package pkg provides the core libraries for weld workspace builds.
//
// # Overview
//
// Weld drives whole workspaces of source checkouts. Everything that can
// be done or depended on is a label: a kind (checkout, package,
// deployment), a name, an optional role and domain, and a tag naming a
// point in that unit's lifecycle. The pkg directory is organized around
// that idea:
//
//  1. [label], [domain] - the label grammar and subdomain names
//  2. [build] - the rule graph, tag stores, and the dependency walker
//  3. [vcs], [makebuild], [hostpkg] - builders for checkouts, make-built
//     packages, and host package installs
//  4. [desc], [workspace] - the build description loader and workspace
//     location logic
//  5. [shell], [cache], [fingerprint], [errors], [observability] -
//     supporting infrastructure
//
// # Architecture
//
// The typical flow through weld:
//
//	src/builds/weld.star (build description)
//	         ↓
//	    [desc] package (execute, register rules)
//	         ↓
//	    [build] package (order labels, walk, skip satisfied)
//	         ↓
//	    [vcs] / [makebuild] / [hostpkg] builders
//	         ↓
//	    tags recorded under .weld/tags/
//
// # Quick Start
//
// Load a description and build a deployment:
//
//	import (
//	    "context"
//	    "github.com/weldbuild/weld/pkg/build"
//	    "github.com/weldbuild/weld/pkg/desc"
//	    "github.com/weldbuild/weld/pkg/label"
//	)
//
//	// 1. Load the build description
//	loader := desc.NewLoader(nil, nil, logger)
//	d, _ := loader.Load(context.Background(), root)
//
//	// 2. Prepare a build context over the persistent tag store
//	bc := build.NewContext(root, build.NewDirStore(root), logger)
//
//	// 3. Walk a target and its prerequisites
//	target := label.MustNew(label.KindDeployment, "everything", "", label.TagDeployed, "")
//	report, _ := build.Walk(context.Background(), bc, d.Rules, []label.Label{target})
//
// # Main Packages
//
// [label] - The label type itself: parsing, comparison, wildcard
// matching, and the per-kind lifecycle orderings.
//
// [build] - Rules mapping a target label to its prerequisites and a
// builder, deterministic topological ordering with cycle detection,
// sequential and pooled walkers, and tag stores (in-memory and the
// .weld/tags/ directory store). Also renders rule graphs through
// Graphviz.
//
// [vcs] - Version control handlers (git, bzr, svn) behind a common
// interface, plus the checkout builder that maps checkout lifecycle
// tags to handler operations.
//
// [makebuild] - The package builder that drives make with the
// workspace's directory conventions exported in the environment.
//
// [hostpkg] - Host package installation via apt-get, probed through
// dpkg-query so installs only run for packages that are missing.
//
// [desc] - The Starlark build description loader, with a fingerprint
// keyed cache manifest for change detection.
//
// [workspace] - Workspace root discovery, subdomain composition, and
// classification of paths into checkout, object, install, and deploy
// places.
//
// [shell] - External command execution with structured logging and
// error classification.
//
// [cache] - Description cache backends: file, redis, and null, plus
// retry helpers for transient backend failures.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/build/...    # Specific package
//
// [label]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/label
// [domain]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/domain
// [build]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/build
// [vcs]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/vcs
// [makebuild]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/makebuild
// [hostpkg]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/hostpkg
// [desc]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/desc
// [workspace]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/workspace
// [shell]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/shell
// [cache]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/cache
// [fingerprint]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/fingerprint
// [errors]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/errors
// [observability]: https://pkg.go.dev/github.com/weldbuild/weld/pkg/observability
package pkg
