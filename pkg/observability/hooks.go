// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about build runs, VCS operations,
// and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the build engine dependency-free from observability frameworks
//   - Allows different backends to be plugged in without touching the core
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnLabelStart(ctx, runID, lbl)
//	// ... invoke the builder ...
//	observability.Build().OnLabelDone(ctx, runID, lbl, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks receives events from build runs. Labels are passed in their
// canonical text form.
type BuildHooks interface {
	// OnRunStart records the start of a build run over the given targets.
	OnRunStart(ctx context.Context, runID string, targets []string)

	// OnRunDone records the end of a build run.
	OnRunDone(ctx context.Context, runID string, duration time.Duration, failed int)

	// OnLabelStart records that a label's builder is about to run.
	OnLabelStart(ctx context.Context, runID, lbl string)

	// OnLabelDone records a builder's outcome.
	OnLabelDone(ctx context.Context, runID, lbl string, duration time.Duration, err error)

	// OnLabelSkipped records a label skipped because it was already
	// satisfied or because an upstream label failed.
	OnLabelSkipped(ctx context.Context, runID, lbl string, upstreamFailure bool)
}

// VCSHooks receives events from version-control operations.
type VCSHooks interface {
	// OnOperation records a VCS operation against a checkout.
	OnOperation(ctx context.Context, scheme, op, checkout string)

	// OnOperationDone records the operation's outcome.
	OnOperationDone(ctx context.Context, scheme, op, checkout string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnRunStart(context.Context, string, []string)                      {}
func (NoopBuildHooks) OnRunDone(context.Context, string, time.Duration, int)             {}
func (NoopBuildHooks) OnLabelStart(context.Context, string, string)                      {}
func (NoopBuildHooks) OnLabelDone(context.Context, string, string, time.Duration, error) {}
func (NoopBuildHooks) OnLabelSkipped(context.Context, string, string, bool)              {}

// NoopVCSHooks is a no-op implementation of VCSHooks.
type NoopVCSHooks struct{}

func (NoopVCSHooks) OnOperation(context.Context, string, string, string) {}
func (NoopVCSHooks) OnOperationDone(context.Context, string, string, string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	vcsHooks   VCSHooks   = NoopVCSHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any build runs.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetVCSHooks registers custom VCS hooks.
// This should be called once at application startup before any VCS operations.
func SetVCSHooks(h VCSHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		vcsHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// VCS returns the registered VCS hooks.
func VCS() VCSHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return vcsHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	vcsHooks = NoopVCSHooks{}
	cacheHooks = NoopCacheHooks{}
}
