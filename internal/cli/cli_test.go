package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/desc"
	"github.com/weldbuild/weld/pkg/label"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"init", "build", "rebuild", "clean", "query", "where", "vcs", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestLoadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Name != filepath.Base(dir) {
		t.Errorf("Name = %q, want %q", cfg.Name, filepath.Base(dir))
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	content := `name = "factory"
workers = 8
description = "src/meta/weld.star"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
`
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Name != "factory" {
		t.Errorf("Name = %q, want %q", cfg.Name, "factory")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Description != "src/meta/weld.star" {
		t.Errorf("Description = %q", cfg.Description)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "redis")
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
}

func TestLoadConfigNegativeWorkers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("workers = -2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("LoadConfig() should reject negative workers")
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("workers = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("LoadConfig() should reject malformed TOML")
	}
}

// testDescription builds a small description by hand: one deployment
// over one package built from one checkout.
func testDescription(t *testing.T) *desc.Description {
	t.Helper()
	rs := build.NewRuleset()

	add := func(l label.Label, withBuilder bool) {
		t.Helper()
		var b build.Builder
		if withBuilder {
			b = build.BuilderFunc(func(context.Context, *build.Context, label.Label) error { return nil })
		}
		if err := rs.Add(build.NewRule(l, b)); err != nil {
			t.Fatal(err)
		}
	}

	co := label.MustNew(label.KindCheckout, "app", "", label.TagCheckedOut, "")
	built := label.MustNew(label.KindPackage, "app", "", label.TagBuilt, "")
	post := label.MustNew(label.KindPackage, "app", "", label.TagPostInstalled, "")
	dep := label.MustNew(label.KindDeployment, "everything", "", label.TagDeployed, "")

	add(co, true)
	add(built, true)
	add(post, true)
	add(dep, false)
	if err := rs.AddDependency(built, co); err != nil {
		t.Fatal(err)
	}
	if err := rs.AddDependency(post, built); err != nil {
		t.Fatal(err)
	}
	if err := rs.AddDependency(dep, post); err != nil {
		t.Fatal(err)
	}

	return &desc.Description{Rules: rs}
}

func TestParseTargetsDefaultsToDeployments(t *testing.T) {
	d := testDescription(t)
	targets, err := parseTargets(d, nil)
	if err != nil {
		t.Fatalf("parseTargets() error = %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("got %d targets, want 1", len(targets))
	}
	if targets[0].Kind != label.KindDeployment || targets[0].Name != "everything" {
		t.Errorf("default target = %s, want the deployment", targets[0])
	}
}

func TestParseTargetsBareNames(t *testing.T) {
	d := testDescription(t)

	targets, err := parseTargets(d, []string{"everything"})
	if err != nil {
		t.Fatalf("parseTargets() error = %v", err)
	}
	if targets[0].Kind != label.KindDeployment {
		t.Errorf("bare deployment name resolved to %s", targets[0])
	}

	targets, err = parseTargets(d, []string{"app"})
	if err != nil {
		t.Fatalf("parseTargets() error = %v", err)
	}
	if targets[0].Kind != label.KindPackage || targets[0].Tag != label.TagPostInstalled {
		t.Errorf("bare package name resolved to %s", targets[0])
	}
}

func TestParseTargetsFullLabel(t *testing.T) {
	d := testDescription(t)
	targets, err := parseTargets(d, []string{"package:app/built"})
	if err != nil {
		t.Fatalf("parseTargets() error = %v", err)
	}
	if targets[0].Tag != label.TagBuilt {
		t.Errorf("full label resolved to %s", targets[0])
	}
}

func TestParseTargetsBadLabel(t *testing.T) {
	d := testDescription(t)
	if _, err := parseTargets(d, []string{"nonsense:::"}); err == nil {
		t.Error("parseTargets() should reject malformed labels")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	c := New(&bytes.Buffer{}, log.InfoLevel)
	cmd := c.initCommand()
	cmd.SetArgs([]string{"factory"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, p := range []string{".weld", configFile, filepath.FromSlash(desc.DefaultPath)} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("init did not create %s: %v", p, err)
		}
	}

	// Running init again must not clobber the existing files.
	before, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Execute(); err != nil {
		t.Fatalf("repeat init failed: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("repeat init rewrote weld.toml")
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}
