// Package build contains the dependency engine of weld: the rule graph
// over labels, the build-order computation, and the walkers that drive
// Builders to bring labels to their requested lifecycle states.
//
// # Architecture
//
// A [Rule] binds one target label to the prerequisite labels that must be
// satisfied first and the [Builder] that performs the transition. The
// [Ruleset] holds the whole prerequisite graph; it is constructed once,
// while the workspace description is loaded, and only read afterwards.
//
// A build run starts from a set of requested target labels, computes the
// transitive closure of their prerequisites, orders it topologically
// (rejecting cycles before anything executes), and then walks the order,
// invoking each label's Builder unless the tag store already records the
// label as satisfied. [Walk] walks sequentially; [PoolWalk] runs
// independent branches concurrently under a bounded worker pool. Both
// apply the same failure policy: a failed label aborts only the branch
// that depends on it, everything else finishes, and every label's outcome
// is reported at the end.
//
// # Idempotence
//
// Builders are invoked at most once per label per run, and not at all
// when the tag store says the label is already satisfied. Builders must
// themselves be safely re-runnable, since a run aborted by an external
// failure may be retried.
package build

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/observability"
)

// Builder performs the action that brings one label to its tag, or does
// nothing when the invocation is a no-op for that tag. Most builders only
// act on one or two tags of their unit and treat the rest as
// pass-through.
//
// Failure contract: expected conditions (a missing external tool, a
// non-zero exit from an invoked process) must be reported as user
// failures; broken invariants as system errors. A non-zero external exit
// must never be swallowed.
type Builder interface {
	BuildLabel(ctx context.Context, bc *Context, target label.Label) error
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, bc *Context, target label.Label) error

// BuildLabel calls f.
func (f BuilderFunc) BuildLabel(ctx context.Context, bc *Context, target label.Label) error {
	return f(ctx, bc, target)
}

// Context is the shared state a Builder may need: where the workspace
// is, the environment to hand to external tools, the tag store recording
// progress, and the run's logger. It is constructed once per build run
// and passed explicitly; nothing in this package reads ambient globals.
type Context struct {
	// RootDir is the workspace root (the directory holding .weld).
	RootDir string

	// Env is the environment handed to external processes. Nil means
	// inherit the current process environment.
	Env []string

	// Tags records which labels have been achieved.
	Tags TagStore

	// Logger receives progress output. Never nil after NewContext.
	Logger *log.Logger

	// RunID identifies this build run in logs and reports.
	RunID string

	// Workers bounds the pool walker's concurrency. Zero means
	// DefaultWorkers.
	Workers int

	// Hooks receives build lifecycle events. Never nil after NewContext.
	Hooks observability.BuildHooks
}

// DefaultWorkers bounds PoolWalker concurrency when Context.Workers is
// left zero.
const DefaultWorkers = 4

// NewContext creates a build context rooted at rootDir, with a fresh run
// ID. A nil logger is replaced by the default logger and a nil store by
// an in-memory one, so tests can construct contexts tersely.
func NewContext(rootDir string, tags TagStore, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	if tags == nil {
		tags = NewMemStore()
	}
	return &Context{
		RootDir: rootDir,
		Tags:    tags,
		Logger:  logger,
		RunID:   uuid.NewString(),
		Hooks:   observability.Build(),
	}
}

// workers returns the configured pool size, applying the default.
func (bc *Context) workers() int {
	if bc.Workers > 0 {
		return bc.Workers
	}
	return DefaultWorkers
}
