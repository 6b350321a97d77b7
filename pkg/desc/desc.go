// Package desc loads a workspace's build description: a Starlark file
// at src/builds/weld.star that declares checkouts, packages, and
// deployments, and from which the whole rule graph is derived.
package desc

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/cache"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/fingerprint"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/observability"
	"github.com/weldbuild/weld/pkg/vcs"
	"github.com/weldbuild/weld/pkg/workspace"
)

// DefaultPath is the build description's location below the workspace
// root.
const DefaultPath = "src/builds/weld.star"

// Description is a loaded build description: the rule graph plus what
// was declared to produce it.
type Description struct {
	// Path is the description file that was loaded.
	Path string

	// Fingerprint is the SHA-256 of the description file.
	Fingerprint string

	// Rules is the complete rule graph.
	Rules *build.Ruleset

	// Checkouts lists the declared checkouts in declaration order.
	Checkouts []vcs.Checkout

	// Changed reports whether the description's fingerprint differs
	// from the last load seen by the cache.
	Changed bool
}

// MarkLoaded records the description as loaded in a tag store, so
// rules can depend on the description having been read.
func (d *Description) MarkLoaded(ts build.TagStore) error {
	l, err := label.New(label.KindSynthetic, "description", "", label.TagLoaded, "")
	if err != nil {
		return err
	}
	return ts.Set(l)
}

// CheckoutIndex builds the checkout name to "name{role}" package
// mapping from the rule graph, following each package's configuration
// edge back to the checkout it builds from.
func (d *Description) CheckoutIndex() workspace.CheckoutIndex {
	idx := make(workspace.CheckoutIndex)
	for _, target := range d.Rules.Match(label.Label{
		Kind: label.KindPackage, Name: "*", Role: "*", Domain: "*", Tag: label.TagPreConfig,
	}) {
		rule, err := d.Rules.RuleFor(target, false)
		if err != nil {
			continue
		}
		for _, pre := range rule.Prereqs() {
			if pre.Kind != label.KindCheckout {
				continue
			}
			idx[pre.Name] = append(idx[pre.Name], target.UnitString())
		}
	}
	return idx
}

// CheckoutPaths maps each declared checkout with a nested source
// directory to its path below src/. Checkouts living at src/<name>
// are left out; Locate resolves those without help.
func (d *Description) CheckoutPaths() workspace.CheckoutPaths {
	paths := make(workspace.CheckoutPaths)
	for _, co := range d.Checkouts {
		if p := co.SrcPath(); p != co.Name {
			paths[co.Name] = p
		}
	}
	return paths
}

// manifest is what the cache remembers about a load.
type manifest struct {
	Fingerprint string   `json:"fingerprint"`
	Targets     []string `json:"targets"`
	Checkouts   []string `json:"checkouts"`
}

// Loader loads build descriptions. The zero value is not usable; use
// NewLoader.
type Loader struct {
	registry *vcs.Registry
	cache    cache.Cache
	logger   *log.Logger

	// Path is the description's path relative to the workspace root.
	// Empty means DefaultPath.
	Path string
}

// NewLoader creates a loader. A nil registry gets the built-in
// handlers, a nil cache disables caching, a nil logger uses the
// default.
func NewLoader(reg *vcs.Registry, c cache.Cache, logger *log.Logger) *Loader {
	if reg == nil {
		reg = vcs.NewRegistry()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{registry: reg, cache: c, logger: logger}
}

// Registry returns the VCS registry descriptions register handlers
// into.
func (ld *Loader) Registry() *vcs.Registry { return ld.registry }

func (ld *Loader) relPath() string {
	if ld.Path != "" {
		return ld.Path
	}
	return DefaultPath
}

// Load evaluates the workspace's build description and returns the
// rule graph it declares. Syntax and evaluation errors surface as
// description errors carrying the Starlark backtrace.
func (ld *Loader) Load(ctx context.Context, root string) (*Description, error) {
	path := filepath.Join(root, filepath.FromSlash(ld.relPath()))
	sum, err := fingerprint.Hash(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBadDescription, err,
			"no build description at %s", path)
	}

	d := &Description{
		Path:        path,
		Fingerprint: sum,
		Rules:       build.NewRuleset(),
		Changed:     true,
	}

	key := cache.DescriptionKey(path, sum)
	hooks := observability.Cache()
	if hit, err := ld.cacheGet(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "description")
		d.Changed = false
		ld.logger.Debug("build description unchanged", "path", path)
	} else {
		hooks.OnCacheMiss(ctx, "description")
	}

	reg := &registration{loader: ld, desc: d}
	thread := &starlark.Thread{
		Name: "weld-description",
		Print: func(_ *starlark.Thread, msg string) {
			ld.logger.Info(msg)
		},
	}
	predeclared := reg.builtins()
	predeclared["workspace_root"] = starlark.String(root)

	if _, err := starlark.ExecFile(thread, path, nil, predeclared); err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return nil, errors.Wrap(errors.ErrCodeBadDescription, err,
				"build description failed:\n%s", evalErr.Backtrace())
		}
		return nil, errors.Wrap(errors.ErrCodeBadDescription, err,
			"build description failed to parse")
	}

	if d.Changed {
		m := manifest{Fingerprint: sum}
		for _, t := range d.Rules.Targets() {
			m.Targets = append(m.Targets, t.String())
		}
		for _, co := range d.Checkouts {
			m.Checkouts = append(m.Checkouts, co.Name)
		}
		data, err := json.Marshal(m)
		if err == nil {
			if err := ld.cacheSet(ctx, key, data); err == nil {
				hooks.OnCacheSet(ctx, "description", len(data))
			}
		}
	}

	ld.logger.Info("build description loaded",
		"path", path, "rules", d.Rules.Len(), "checkouts", len(d.Checkouts))
	return d, nil
}

// cacheGet probes the manifest cache, retrying transient backend
// failures so a brief Redis hiccup does not force a reload.
func (ld *Loader) cacheGet(ctx context.Context, key string) (bool, error) {
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		_, hit, err = ld.cache.Get(ctx, key)
		return err
	})
	return hit, err
}

func (ld *Loader) cacheSet(ctx context.Context, key string, data []byte) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return ld.cache.Set(ctx, key, data, 0)
	})
}
