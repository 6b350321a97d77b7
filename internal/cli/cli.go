// Package cli implements the weld command-line interface.
//
// This package provides commands for initializing workspaces, building
// labels through the dependency engine, querying the rule graph, and
// driving version control across checkouts. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/buildinfo"
	"github.com/weldbuild/weld/pkg/cache"
	"github.com/weldbuild/weld/pkg/desc"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/workspace"
)

// appName is the application name used for directories and display.
const appName = "weld"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the weld.toml location, set by --config.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Weld builds multi-checkout workspaces",
		Long:         `Weld drives whole workspaces of source checkouts: it knows which packages are built from which checkouts, which depend on which, and how far along each one is, and only does the work that is actually needed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default weld.toml at the workspace root)")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.rebuildCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.whereCommand())
	root.AddCommand(c.vcsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// session is everything an in-workspace command needs: the located
// root, the loaded description, and a build context over the
// persistent tag store.
type session struct {
	Root    string
	Domain  string
	Config  Config
	Desc    *desc.Description
	Context *build.Context

	cache cache.Cache
}

// Close releases the session's cache.
func (s *session) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// openSession locates the enclosing workspace from the current
// directory, loads its configuration and build description, and
// prepares a build context.
func (c *CLI) openSession(ctx context.Context, noCache bool) (*session, error) {
	root, dom, err := workspace.FindRoot(".")
	if err != nil {
		return nil, err
	}

	configPath := c.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(root, configFile)
	}
	cfg, err := LoadConfigFile(root, configPath)
	if err != nil {
		return nil, err
	}

	cch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		cch = cache.NewNullCache()
	}

	loader := desc.NewLoader(nil, cch, c.Logger)
	if cfg.Description != "" {
		loader.Path = cfg.Description
	}
	d, err := loader.Load(ctx, root)
	if err != nil {
		cch.Close()
		return nil, err
	}

	bc := build.NewContext(root, build.NewDirStore(root), c.Logger)
	bc.Workers = cfg.Workers
	if err := d.MarkLoaded(bc.Tags); err != nil {
		cch.Close()
		return nil, err
	}

	return &session{
		Root:    root,
		Domain:  dom,
		Config:  cfg,
		Desc:    d,
		Context: bc,
		cache:   cch,
	}, nil
}

// newCache picks the cache backend the configuration asks for.
func (c *CLI) newCache(ctx context.Context, cfg Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.Scoped(rc, cache.Hash([]byte(cfg.Name))[:12]+":"), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/weld/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseTargets turns command-line target arguments into labels.
// Full labels pass through; a bare "name" or "name{role}" names a
// deployment if one exists, otherwise a package to bring to
// postinstalled. No arguments means every deployment, or every
// package when the description declares none.
func parseTargets(d *desc.Description, args []string) ([]label.Label, error) {
	if len(args) == 0 {
		all := d.Rules.Match(label.Label{Kind: label.KindDeployment, Name: "*", Role: "*", Domain: "*", Tag: label.TagDeployed})
		if len(all) > 0 {
			return all, nil
		}
		all = d.Rules.Match(label.Label{Kind: label.KindPackage, Name: "*", Role: "*", Domain: "*", Tag: label.TagPostInstalled})
		if len(all) == 0 {
			return nil, errors.New(errors.ErrCodeBadDescription, "the build description declares nothing to build")
		}
		return all, nil
	}

	var out []label.Label
	for _, arg := range args {
		if strings.ContainsRune(arg, ':') {
			l, err := label.Parse(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, l)
			continue
		}
		name, role, err := workspace.ParsePackageSpec(arg)
		if err != nil {
			return nil, err
		}
		if role == "" {
			dep, err := label.New(label.KindDeployment, name, "", label.TagDeployed, "")
			if err == nil {
				if _, rerr := d.Rules.RuleFor(dep, false); rerr == nil {
					out = append(out, dep)
					continue
				}
			}
		}
		l, err := label.New(label.KindPackage, name, role, label.TagPostInstalled, "")
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
