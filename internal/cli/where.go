package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/workspace"
)

// whereCommand creates the "where" command, which reports where in a
// workspace the current directory sits.
func (c *CLI) whereCommand() *cobra.Command {
	var rootOnly bool
	cmd := &cobra.Command{
		Use:   "where",
		Short: "Describe where in the workspace you are",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, dom, err := workspace.FindRoot(".")
			if err != nil {
				return err
			}
			if rootOnly {
				cmd.Println(root)
				return nil
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			// Without a loadable description, nested checkout dirs
			// degrade to their first path segment.
			var paths workspace.CheckoutPaths
			if s, serr := c.openSession(cmd.Context(), true); serr == nil {
				paths = s.Desc.CheckoutPaths()
				s.Close()
			}
			place, err := workspace.Locate(root, cwd, paths)
			if err != nil {
				return err
			}

			printKeyValue("root", root)
			if dom != "" {
				printKeyValue("domain", dom)
			}
			printKeyValue("place", place.String())
			if rel, rerr := filepath.Rel(root, cwd); rerr == nil && rel != "." {
				printKeyValue("path", rel)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rootOnly, "root", false, "print only the workspace root path")
	return cmd
}
