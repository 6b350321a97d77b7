package build

import (
	"context"
	"fmt"
	"time"

	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
)

// Outcome is what happened to one label during a walk.
type Outcome int

const (
	// OutcomeBuilt means the label's builder ran and succeeded.
	OutcomeBuilt Outcome = iota
	// OutcomeSatisfied means the tag store already recorded the label,
	// so the builder was not run.
	OutcomeSatisfied
	// OutcomeFailed means the label's builder ran and failed.
	OutcomeFailed
	// OutcomeAborted means the label was not attempted because a label
	// it depends on failed.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBuilt:
		return "built"
	case OutcomeSatisfied:
		return "satisfied"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one label in a walk.
type Result struct {
	Label    label.Label
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Report is the outcome of a whole walk, one Result per label in build
// order.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Failed returns the results of labels whose builders failed. Aborted
// labels are not included; they are consequences, not causes.
func (rep *Report) Failed() []Result {
	var out []Result
	for _, r := range rep.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// Err returns nil when every label succeeded, otherwise an error
// naming the labels that failed and wrapping the first failure.
func (rep *Report) Err() error {
	failed := rep.Failed()
	if len(failed) == 0 {
		return nil
	}
	msg := failed[0].Label.String()
	for _, r := range failed[1:] {
		msg += ", " + r.Label.String()
	}
	return errors.Wrap(errors.GetCode(failed[0].Err), failed[0].Err,
		"%d label(s) failed: %s", len(failed), msg)
}

// runLabel applies the walk policy to one label: skip it when the tag
// store already records it, otherwise run its builder and record the
// tag on success. Builder-less grouping rules succeed trivially.
func runLabel(ctx context.Context, bc *Context, r *Rule) Result {
	target := r.Target
	done, err := bc.Tags.Satisfied(target)
	if err != nil {
		return Result{Label: target, Outcome: OutcomeFailed, Err: err}
	}
	if done {
		bc.Hooks.OnLabelSkipped(ctx, bc.RunID, target.String(), false)
		return Result{Label: target, Outcome: OutcomeSatisfied}
	}

	bc.Hooks.OnLabelStart(ctx, bc.RunID, target.String())
	start := time.Now()
	if r.Builder != nil {
		err = r.Builder.BuildLabel(ctx, bc, target)
	}
	elapsed := time.Since(start)
	bc.Hooks.OnLabelDone(ctx, bc.RunID, target.String(), elapsed, err)
	if err != nil {
		return Result{Label: target, Outcome: OutcomeFailed, Err: err, Duration: elapsed}
	}
	if err := bc.Tags.Set(target); err != nil {
		return Result{Label: target, Outcome: OutcomeFailed, Err: err, Duration: elapsed}
	}
	return Result{Label: target, Outcome: OutcomeBuilt, Duration: elapsed}
}

// Walk builds the targets sequentially in dependency order. A failed
// label aborts only the labels that depend on it; independent labels
// still run, and every label's outcome appears in the report.
//
// The returned error covers problems that prevent the walk from
// starting at all (unknown targets, cycles, unbuildable rules). Builder
// failures are reported through the Report, not the error.
func Walk(ctx context.Context, bc *Context, rs *Ruleset, targets []label.Label) (*Report, error) {
	order, err := Order(rs, targets)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(order))
	for i, l := range order {
		names[i] = l.String()
	}
	bc.Hooks.OnRunStart(ctx, bc.RunID, names)
	start := time.Now()

	rep := &Report{RunID: bc.RunID}
	failed := make(map[string]bool)
	for _, l := range order {
		r, err := rs.RuleFor(l, false)
		if err != nil {
			return nil, err
		}

		aborted := ctx.Err() != nil
		if !aborted {
			for _, pre := range r.Prereqs() {
				if failed[pre.String()] {
					aborted = true
					break
				}
			}
		}
		if aborted {
			failed[l.String()] = true
			bc.Hooks.OnLabelSkipped(ctx, bc.RunID, l.String(), true)
			rep.Results = append(rep.Results, Result{Label: l, Outcome: OutcomeAborted})
			continue
		}

		res := runLabel(ctx, bc, r)
		if res.Outcome == OutcomeFailed {
			failed[l.String()] = true
			bc.Logger.Error("build failed", "label", l.String(), "err", res.Err)
		}
		rep.Results = append(rep.Results, res)
	}

	rep.Duration = time.Since(start)
	bc.Hooks.OnRunDone(ctx, bc.RunID, rep.Duration, len(rep.Failed()))
	return rep, nil
}
