package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
)

// buildOpts holds the command-line flags shared by build-like commands.
type buildOpts struct {
	workers int  // parallel jobs, 0 keeps the configured value
	noCache bool // bypass the description cache
	verbose bool // list satisfied labels in the report
}

func (o *buildOpts) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.workers, "jobs", "j", 0, "number of parallel build jobs")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the description cache")
	cmd.Flags().BoolVar(&o.verbose, "long", false, "list already-satisfied labels too")
}

// buildCommand creates the "build" command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build labels and everything they depend on",
		Long: `Build brings the named targets up to date, building their
prerequisites first and skipping anything already done. Targets may be
full labels ("package:zlib{x86}/built"), bare package names, or
deployment names. With no targets, every deployment is built.`,
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

			p := newProgress(c.Logger)
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
			p.done(fmt.Sprintf("Walked %d labels", len(rep.Results)))
			return rep.Err()
		},
	}
	opts.register(cmd)
	return cmd
}
