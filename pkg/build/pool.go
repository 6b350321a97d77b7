package build

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/weldbuild/weld/pkg/label"
)

// PoolWalk builds the targets like Walk, but runs independent labels
// concurrently under a bounded worker pool of bc.Workers goroutines.
// Dependency order is still honored: a label is dispatched only once
// everything it depends on has finished, and the failure policy is the
// same as Walk's.
//
// The report lists labels in the same deterministic order Walk would
// use, whatever order they actually finished in.
func PoolWalk(ctx context.Context, bc *Context, rs *Ruleset, targets []label.Label) (*Report, error) {
	order, err := Order(rs, targets)
	if err != nil {
		return nil, err
	}
	closure, err := Closure(rs, targets)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(order))
	for i, l := range order {
		names[i] = l.String()
	}
	bc.Hooks.OnRunStart(ctx, bc.RunID, names)
	start := time.Now()

	indeg := make(map[string]int, len(closure))
	dependents := make(map[string][]string, len(closure))
	for key, r := range closure {
		for _, pre := range r.Prereqs() {
			indeg[key]++
			pk := pre.String()
			dependents[pk] = append(dependents[pk], key)
		}
	}

	var ready []string
	for key := range closure {
		if indeg[key] == 0 {
			ready = append(ready, key)
		}
	}
	sort.Strings(ready)

	jobs := make(chan *Rule)
	results := make(chan Result)
	var wg sync.WaitGroup
	for i := 0; i < bc.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				results <- runLabel(ctx, bc, r)
			}
		}()
	}

	resultFor := make(map[string]Result, len(closure))
	upstreamFailed := make(map[string]bool)
	completed := 0

	// finish records one label's result and releases its dependents.
	finish := func(key string, failed bool, res Result) {
		resultFor[key] = res
		completed++
		released := false
		for _, dep := range dependents[key] {
			if failed {
				upstreamFailed[dep] = true
			}
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	for completed < len(closure) {
		// Aborted labels never reach a worker.
		if len(ready) > 0 {
			key := ready[0]
			if upstreamFailed[key] || ctx.Err() != nil {
				ready = ready[1:]
				l := closure[key].Target
				bc.Hooks.OnLabelSkipped(ctx, bc.RunID, key, true)
				finish(key, true, Result{Label: l, Outcome: OutcomeAborted})
				continue
			}
		}

		// A nil channel blocks forever, so with nothing ready the
		// select below only waits for results.
		var dispatch chan *Rule
		var next *Rule
		if len(ready) > 0 {
			dispatch = jobs
			next = closure[ready[0]]
		}

		select {
		case dispatch <- next:
			ready = ready[1:]
		case res := <-results:
			failed := res.Outcome == OutcomeFailed
			if failed {
				bc.Logger.Error("build failed", "label", res.Label.String(), "err", res.Err)
			}
			finish(res.Label.String(), failed, res)
		}
	}

	close(jobs)
	wg.Wait()

	rep := &Report{RunID: bc.RunID, Duration: time.Since(start)}
	for _, l := range order {
		rep.Results = append(rep.Results, resultFor[l.String()])
	}
	bc.Hooks.OnRunDone(ctx, bc.RunID, rep.Duration, len(rep.Failed()))
	return rep, nil
}
