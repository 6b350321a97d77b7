package observability

import (
	"context"
	"testing"
	"time"
)

type recordingBuildHooks struct {
	NoopBuildHooks
	started []string
	done    []string
	skipped []string
}

func (r *recordingBuildHooks) OnLabelStart(_ context.Context, _ string, lbl string) {
	r.started = append(r.started, lbl)
}

func (r *recordingBuildHooks) OnLabelDone(_ context.Context, _ string, lbl string, _ time.Duration, _ error) {
	r.done = append(r.done, lbl)
}

func (r *recordingBuildHooks) OnLabelSkipped(_ context.Context, _ string, lbl string, _ bool) {
	r.skipped = append(r.skipped, lbl)
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Build().OnRunStart(ctx, "run", []string{"package:hello/installed"})
	Build().OnLabelStart(ctx, "run", "package:hello/installed")
	Build().OnLabelDone(ctx, "run", "package:hello/installed", time.Second, nil)
	Build().OnRunDone(ctx, "run", time.Second, 0)
	VCS().OnOperation(ctx, "git", "pull", "hello")
	VCS().OnOperationDone(ctx, "git", "pull", "hello", time.Second, nil)
	Cache().OnCacheHit(ctx, "description")
	Cache().OnCacheMiss(ctx, "description")
	Cache().OnCacheSet(ctx, "description", 42)
}

func TestSetBuildHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingBuildHooks{}
	SetBuildHooks(rec)

	ctx := context.Background()
	Build().OnLabelStart(ctx, "run", "package:a/built")
	Build().OnLabelDone(ctx, "run", "package:a/built", time.Millisecond, nil)
	Build().OnLabelSkipped(ctx, "run", "package:b/built", true)

	if len(rec.started) != 1 || rec.started[0] != "package:a/built" {
		t.Errorf("started = %v, want [package:a/built]", rec.started)
	}
	if len(rec.done) != 1 {
		t.Errorf("done = %v, want one entry", rec.done)
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != "package:b/built" {
		t.Errorf("skipped = %v, want [package:b/built]", rec.skipped)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingBuildHooks{}
	SetBuildHooks(rec)
	SetBuildHooks(nil)

	Build().OnLabelStart(context.Background(), "run", "package:a/built")
	if len(rec.started) != 1 {
		t.Errorf("nil registration replaced hooks; started = %v", rec.started)
	}
}

func TestReset(t *testing.T) {
	SetBuildHooks(&recordingBuildHooks{})
	Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Errorf("Reset did not restore noop build hooks, got %T", Build())
	}
	if _, ok := VCS().(NoopVCSHooks); !ok {
		t.Errorf("Reset did not restore noop VCS hooks, got %T", VCS())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Reset did not restore noop cache hooks, got %T", Cache())
	}
}
