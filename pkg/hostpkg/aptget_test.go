package hostpkg

import (
	"context"
	"testing"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
)

// fakeHost simulates the host package state.
type fakeHost struct {
	installed map[string]bool
	probes    []string
	installs  [][]string
}

func (h *fakeHost) wire(a *AptGet) {
	a.Probe = func(_ context.Context, _ *build.Context, pkg string) (bool, error) {
		h.probes = append(h.probes, pkg)
		return h.installed[pkg], nil
	}
	a.Install = func(_ context.Context, _ *build.Context, pkgs []string) error {
		h.installs = append(h.installs, pkgs)
		for _, p := range pkgs {
			h.installed[p] = true
		}
		return nil
	}
}

func TestAptGetInstallsOnlyMissing(t *testing.T) {
	host := &fakeHost{installed: map[string]bool{"gcc": true}}
	a := New("gcc", "make", "libssl-dev")
	host.wire(a)

	bc := build.NewContext(t.TempDir(), nil, nil)
	l := label.MustNew(label.KindPackage, "buildtools", "", label.TagBuilt, "")
	if err := a.BuildLabel(context.Background(), bc, l); err != nil {
		t.Fatal(err)
	}

	if len(host.probes) != 3 {
		t.Errorf("probed %v, want all three packages", host.probes)
	}
	if len(host.installs) != 1 {
		t.Fatalf("installs = %v, want exactly one apt-get run", host.installs)
	}
	got := host.installs[0]
	if len(got) != 2 || got[0] != "make" || got[1] != "libssl-dev" {
		t.Errorf("installed %v, want [make libssl-dev]", got)
	}
}

func TestAptGetNoopWhenAllInstalled(t *testing.T) {
	host := &fakeHost{installed: map[string]bool{"gcc": true, "make": true}}
	a := New("gcc", "make")
	host.wire(a)

	bc := build.NewContext(t.TempDir(), nil, nil)
	l := label.MustNew(label.KindPackage, "buildtools", "", label.TagBuilt, "")
	if err := a.BuildLabel(context.Background(), bc, l); err != nil {
		t.Fatal(err)
	}
	if len(host.installs) != 0 {
		t.Errorf("installs = %v, want none", host.installs)
	}
}

func TestAptGetIgnoresOtherTags(t *testing.T) {
	host := &fakeHost{installed: map[string]bool{}}
	a := New("gcc")
	host.wire(a)

	bc := build.NewContext(t.TempDir(), nil, nil)
	for _, tag := range []label.Tag{label.TagPreConfig, label.TagConfigured, label.TagInstalled, label.TagPostInstalled} {
		l := label.MustNew(label.KindPackage, "buildtools", "", tag, "")
		if err := a.BuildLabel(context.Background(), bc, l); err != nil {
			t.Fatal(err)
		}
	}
	if len(host.probes) != 0 || len(host.installs) != 0 {
		t.Errorf("acted on non-built tags: probes=%v installs=%v", host.probes, host.installs)
	}
}

func TestAptGetProbeFailure(t *testing.T) {
	a := New("gcc")
	a.Probe = func(context.Context, *build.Context, string) (bool, error) {
		return false, errors.New(errors.ErrCodeToolMissing, "dpkg-query is not installed")
	}

	bc := build.NewContext(t.TempDir(), nil, nil)
	l := label.MustNew(label.KindPackage, "buildtools", "", label.TagBuilt, "")
	if err := a.BuildLabel(context.Background(), bc, l); !errors.Is(err, errors.ErrCodeToolMissing) {
		t.Errorf("err = %v, want tool-missing", err)
	}
}

func TestSimpleAndMedium(t *testing.T) {
	rs := build.NewRuleset()
	if err := Simple(rs, "buildtools", "gcc", "make"); err != nil {
		t.Fatal(err)
	}
	if err := Medium(rs, "sdl", []string{"x86", "arm"}, "libsdl2-dev"); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"package:buildtools/built",
		"package:sdl{x86}/built",
		"package:sdl{arm}/built",
	} {
		l, err := label.Parse(want)
		if err != nil {
			t.Fatal(err)
		}
		r, err := rs.RuleFor(l, false)
		if err != nil {
			t.Fatalf("%s: %v", want, err)
		}
		if r.Builder == nil {
			t.Errorf("%s has no builder", want)
		}
	}
}
