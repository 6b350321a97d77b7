package cli

import (
	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/label"
)

// rebuildCommand creates the "rebuild" command. It forgets that the
// target packages were ever built, then builds them again. Checkout
// state is left alone.
func (c *CLI) rebuildCommand() *cobra.Command {
	var opts buildOpts
	cmd := &cobra.Command{
		Use:   "rebuild [targets...]",
		Short: "Build targets again even if they look up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), opts.noCache)
			if err != nil {
				return err
			}
			defer s.Close()
			if opts.workers > 0 {
				s.Context.Workers = opts.workers
			}

			targets, err := parseTargets(s.Desc, args)
			if err != nil {
				return err
			}

			if err := forgetBuilt(s, targets); err != nil {
				return err
			}

			var rep *build.Report
			if s.Context.Workers != 1 {
				rep, err = build.PoolWalk(cmd.Context(), s.Context, s.Desc.Rules, targets)
			} else {
				rep, err = build.Walk(cmd.Context(), s.Context, s.Desc.Rules, targets)
			}
			if err != nil {
				return err
			}

			printReport(rep, opts.verbose)
			return rep.Err()
		},
	}
	opts.register(cmd)
	return cmd
}

// forgetBuilt clears the built tag, and everything after it, for every
// package in the targets' dependency closure. Deployment targets are
// also cleared so they redeploy from the fresh build.
func forgetBuilt(s *session, targets []label.Label) error {
	ordered, err := build.Order(s.Desc.Rules, targets)
	if err != nil {
		return err
	}
	for _, l := range ordered {
		switch l.Kind {
		case label.KindPackage:
			if l.Tag != label.TagBuilt {
				continue
			}
			if err := s.Context.Tags.ClearFrom(l); err != nil {
				return err
			}
		case label.KindDeployment:
			if err := s.Context.Tags.Clear(l); err != nil {
				return err
			}
		}
	}
	return nil
}
