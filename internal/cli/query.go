package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/workspace"
)

// queryCommand creates the "query" command group for inspecting the
// rule graph without building anything.
func (c *CLI) queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect the build description and rule graph",
	}

	cmd.AddCommand(c.queryOrderCommand())
	cmd.AddCommand(c.queryDotCommand())
	cmd.AddCommand(c.querySVGCommand())
	cmd.AddCommand(c.queryCheckoutsCommand())
	cmd.AddCommand(c.queryLocalCommand())

	return cmd
}

// queryLocalCommand creates "query local": the packages the current
// directory is part of, usable directly as build targets.
func (c *CLI) queryLocalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "List the packages the current directory belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			pkgs, err := workspace.LocalPackages(s.Root, cwd, s.Desc.CheckoutIndex(), s.Desc.CheckoutPaths())
			if err != nil {
				return err
			}
			if len(pkgs) == 0 {
				printInfo("No packages here")
				return nil
			}
			for _, p := range pkgs {
				fmt.Println(p)
			}
			return nil
		},
	}
}

// queryOrderCommand creates "query order": the labels a build of the
// targets would visit, in execution order.
func (c *CLI) queryOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order [targets...]",
		Short: "Print the labels a build would visit, in order",
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
			ordered, err := build.Order(s.Desc.Rules, targets)
			if err != nil {
				return err
			}
			for _, l := range ordered {
				done, serr := s.Context.Tags.Satisfied(l)
				if serr != nil {
					return serr
				}
				mark := "  "
				if done {
					mark = StyleSuccess.Render(iconSuccess) + " "
				}
				fmt.Println(mark + l.String())
			}
			return nil
		},
	}
}

// queryDotCommand creates "query dot": the rule graph in Graphviz DOT
// form, on stdout.
func (c *CLI) queryDotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dot [targets...]",
		Short: "Print the rule graph as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			labels, err := targetsOrAll(s, args)
			if err != nil {
				return err
			}
			dot, err := build.ToDOT(s.Desc.Rules, labels)
			if err != nil {
				return err
			}
			fmt.Print(dot)
			return nil
		},
	}
}

// querySVGCommand creates "query svg": the rule graph rendered through
// graphviz, written to a file.
func (c *CLI) querySVGCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "svg [targets...]",
		Short: "Render the rule graph to an SVG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			labels, err := targetsOrAll(s, args)
			if err != nil {
				return err
			}
			sp := newSpinner(cmd.Context(), "rendering rule graph")
			sp.Start()
			svg, err := build.RenderSVG(cmd.Context(), s.Desc.Rules, labels)
			sp.Stop()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered rule graph")
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "rules.svg", "output file path")
	return cmd
}

// targetsOrAll resolves target arguments, with no arguments meaning
// the whole rule graph rather than just the default deployments.
func targetsOrAll(s *session, args []string) ([]label.Label, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return parseTargets(s.Desc, args)
}

// queryCheckoutsCommand creates "query checkouts": every checkout the
// description declares, with its repository and pinning.
func (c *CLI) queryCheckoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkouts",
		Short: "List the checkouts the description declares",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, co := range s.Desc.Checkouts {
				printKeyValue(co.Name, co.RepoURL)
				if co.Branch != "" {
					printDetail("branch %s", co.Branch)
				}
				if co.Pinned() {
					printDetail("pinned to %s", co.Revision)
				}
			}
			printDetail("%d checkouts", len(s.Desc.Checkouts))
			return nil
		},
	}
}
