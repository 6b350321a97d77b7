package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/label"
)

// cleanCommand creates the "clean" command. Cleaning runs outside the
// normal lifecycle: it invokes each package's clean action directly and
// then forgets the package's build progress, so the next build starts
// from configuration (or, with --distclean, from scratch).
func (c *CLI) cleanCommand() *cobra.Command {
	var distclean bool
	cmd := &cobra.Command{
		Use:   "clean [targets...]",
		Short: "Remove build output for packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			targets, err := parseTargets(s.Desc, args)
			if err != nil {
				return err
			}
			pkgs, err := packageUnits(s.Desc.Rules, targets)
			if err != nil {
				return err
			}

			tag := label.TagClean
			if distclean {
				tag = label.TagDistClean
			}
			for _, unit := range pkgs {
				if err := cleanPackage(cmd.Context(), s, unit, tag); err != nil {
					return err
				}
			}
			printSuccess("Cleaned %d packages", len(pkgs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&distclean, "distclean", false, "also remove configuration, not just build output")
	return cmd
}

// packageUnits collects each distinct package in the targets'
// dependency closure, one label per name/role/domain.
func packageUnits(rs *build.Ruleset, targets []label.Label) ([]label.Label, error) {
	ordered, err := build.Order(rs, targets)
	if err != nil {
		return nil, err
	}
	var units []label.Label
	for _, l := range ordered {
		if l.Kind != label.KindPackage || l.Tag != label.TagBuilt {
			continue
		}
		units = append(units, l)
	}
	return units, nil
}

// cleanPackage runs the package's builder with the clean tag, then
// clears its recorded progress back to the matching point.
func cleanPackage(ctx context.Context, s *session, built label.Label, tag label.Tag) error {
	rule, err := s.Desc.Rules.RuleFor(built, false)
	if err != nil {
		return err
	}
	if rule.Builder != nil {
		if err := rule.Builder.BuildLabel(ctx, s.Context, built.WithTag(tag)); err != nil {
			return err
		}
	}
	from := built
	if tag == label.TagDistClean {
		from = built.WithTag(label.TagPreConfig)
	}
	return s.Context.Tags.ClearFrom(from)
}
