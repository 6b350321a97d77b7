package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/desc"
	"github.com/weldbuild/weld/pkg/workspace"
)

// configTemplate seeds weld.toml for a fresh workspace.
const configTemplate = `name = "%s"

# Parallel build jobs. Zero means the built-in default.
workers = 0

[cache]
# Backend is "file", "redis" or "none".
backend = "file"
`

// descriptionTemplate seeds the build description for a fresh workspace.
const descriptionTemplate = `# Build description for %s.
#
# Declare checkouts, the packages built from them, and deployments:
#
#   checkout("zlib", "git+https://example.com/zlib.git")
#   package("zlib")
#   checkout("app", "git+https://example.com/app.git", branch="main")
#   package("app", deps=["zlib"])
#   deploy("everything", ["app"])
`

// initCommand creates the "init" command, which turns the current
// directory into a weld workspace.
func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [name]",
		Short: "Create a weld workspace in the current directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			name := filepath.Base(dir)
			if len(args) == 1 {
				name = args[0]
			}

			if err := workspace.Create(dir); err != nil {
				return err
			}
			if err := writeIfMissing(filepath.Join(dir, configFile), fmt.Sprintf(configTemplate, name)); err != nil {
				return err
			}
			descPath := filepath.Join(dir, filepath.FromSlash(desc.DefaultPath))
			if err := os.MkdirAll(filepath.Dir(descPath), 0o755); err != nil {
				return err
			}
			if err := writeIfMissing(descPath, fmt.Sprintf(descriptionTemplate, name)); err != nil {
				return err
			}

			printSuccess("Initialized workspace %s", StyleHighlight.Render(name))
			printFile(configFile)
			printFile(desc.DefaultPath)
			printNextStep("Declare your checkouts in", desc.DefaultPath)
			return nil
		},
	}
}

// writeIfMissing creates path with content unless it already exists.
func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
