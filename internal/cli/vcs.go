package cli

import (
	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/label"
)

// vcsCommand creates the "vcs" command group for driving version
// control across checkouts.
func (c *CLI) vcsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcs",
		Short: "Run version control operations across checkouts",
	}

	cmd.AddCommand(c.vcsOpCommand("checkout", "Clone checkouts that are not on disk yet", label.TagCheckedOut))
	cmd.AddCommand(c.vcsOpCommand("pull", "Fetch upstream changes without merging", label.TagPulled))
	cmd.AddCommand(c.vcsOpCommand("update", "Merge upstream changes into each checkout", label.TagUpToDate))
	cmd.AddCommand(c.vcsOpCommand("commit", "Commit local changes in each checkout", label.TagChangesCommitted))
	cmd.AddCommand(c.vcsOpCommand("push", "Push committed changes upstream", label.TagChangesPushed))

	return cmd
}

// vcsOpCommand creates one vcs subcommand that drives every named
// checkout (or all of them) to the given lifecycle tag. The tag is
// cleared first so the operation runs even if it ran before.
func (c *CLI) vcsOpCommand(name, short string, tag label.Tag) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [checkouts...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			targets, err := checkoutLabels(s, args, tag)
			if err != nil {
				return err
			}
			// ClearFrom, not Clear: a later lifecycle tag would
			// otherwise still satisfy the target and skip the walk.
			for _, l := range targets {
				if err := s.Context.Tags.ClearFrom(l); err != nil {
					return err
				}
			}

			rep, err := build.Walk(cmd.Context(), s.Context, s.Desc.Rules, targets)
			if err != nil {
				return err
			}
			printReport(rep, false)
			return rep.Err()
		},
	}
}

// checkoutLabels returns labels for the named checkouts at the given
// tag, or for every declared checkout when names is empty.
func checkoutLabels(s *session, names []string, tag label.Tag) ([]label.Label, error) {
	if len(names) == 0 {
		names = make([]string, 0, len(s.Desc.Checkouts))
		for _, co := range s.Desc.Checkouts {
			names = append(names, co.Name)
		}
	}
	out := make([]label.Label, 0, len(names))
	for _, name := range names {
		l, err := label.New(label.KindCheckout, name, "", tag, "")
		if err != nil {
			return nil, err
		}
		if _, err := s.Desc.Rules.RuleFor(l, false); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
