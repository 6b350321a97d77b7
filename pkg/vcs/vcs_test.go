package vcs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/weldbuild/weld/pkg/build"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
	"github.com/weldbuild/weld/pkg/shell"
)

// fakeHandler records which operations ran, in order.
type fakeHandler struct {
	ops        []string
	mustUpdate bool
}

func (h *fakeHandler) Scheme() string { return "fake" }

func (h *fakeHandler) CheckOut(_ context.Context, _ *shell.Runner, co *Checkout) error {
	h.ops = append(h.ops, "checkout")
	return os.MkdirAll(co.Dir, 0o755)
}

func (h *fakeHandler) Pull(context.Context, *shell.Runner, *Checkout) error {
	h.ops = append(h.ops, "pull")
	return nil
}

func (h *fakeHandler) Update(context.Context, *shell.Runner, *Checkout) error {
	h.ops = append(h.ops, "update")
	return nil
}

func (h *fakeHandler) Commit(context.Context, *shell.Runner, *Checkout) error {
	h.ops = append(h.ops, "commit")
	return nil
}

func (h *fakeHandler) Push(context.Context, *shell.Runner, *Checkout) error {
	h.ops = append(h.ops, "push")
	return nil
}

func (h *fakeHandler) MustUpdateToCommit() bool { return h.mustUpdate }

func TestSplitURL(t *testing.T) {
	tests := []struct {
		in          string
		scheme, url string
		wantErr     bool
	}{
		{"git+https://example.com/x.git", "git", "https://example.com/x.git", false},
		{"bzr+ssh://host/branch", "bzr", "ssh://host/branch", false},
		{"svn+http://host/repo", "svn", "http://host/repo", false},
		{"https://example.com/x.git", "", "", true},
		{"+https://example.com", "", "", true},
		{"git+", "", "", true},
	}
	for _, tt := range tests {
		scheme, url, err := SplitURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitURL(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitURL(%q): %v", tt.in, err)
			continue
		}
		if scheme != tt.scheme || url != tt.url {
			t.Errorf("SplitURL(%q) = %q, %q; want %q, %q", tt.in, scheme, url, tt.scheme, tt.url)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	for _, scheme := range []string{"git", "bzr", "svn"} {
		if _, err := reg.Lookup(scheme); err != nil {
			t.Errorf("Lookup(%q): %v", scheme, err)
		}
	}

	_, err := reg.Lookup("fossil")
	if !errors.Is(err, errors.ErrCodeUnknownScheme) {
		t.Fatalf("err = %v, want unknown-scheme", err)
	}
	for _, known := range []string{"git", "bzr", "svn"} {
		if !strings.Contains(err.Error(), known) {
			t.Errorf("unknown-scheme error %q does not list %s", err, known)
		}
	}

	// Registration is idempotent and extends the listing.
	h := &fakeHandler{}
	reg.Register(h)
	reg.Register(h)
	got, err := reg.Lookup("fake")
	if err != nil || got != Handler(h) {
		t.Errorf("Lookup(fake) = %v, %v", got, err)
	}
}

func TestBuilderTagMapping(t *testing.T) {
	tests := []struct {
		tag        label.Tag
		mustUpdate bool
		want       []string
	}{
		{label.TagCheckedOut, false, []string{"checkout"}},
		{label.TagPulled, false, []string{"pull"}},
		{label.TagUpToDate, false, []string{"update"}},
		{label.TagChangesCommitted, false, []string{"commit"}},
		{label.TagChangesCommitted, true, []string{"update", "commit"}},
		{label.TagChangesPushed, false, []string{"push"}},
		{label.TagClean, false, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			h := &fakeHandler{mustUpdate: tt.mustUpdate}
			reg := NewRegistry()
			reg.Register(h)

			b, err := NewBuilder(reg, "hello", "fake+https://example.com/hello", "", "")
			if err != nil {
				t.Fatal(err)
			}

			bc := build.NewContext(t.TempDir(), nil, nil)
			l := label.MustNew(label.KindCheckout, "hello", "", tt.tag, "")
			if err := b.BuildLabel(context.Background(), bc, l); err != nil {
				t.Fatal(err)
			}

			if len(h.ops) != len(tt.want) {
				t.Fatalf("ops = %v, want %v", h.ops, tt.want)
			}
			for i := range tt.want {
				if h.ops[i] != tt.want[i] {
					t.Fatalf("ops = %v, want %v", h.ops, tt.want)
				}
			}
		})
	}
}

func TestBuilderCheckoutIsIdempotent(t *testing.T) {
	h := &fakeHandler{}
	reg := NewRegistry()
	reg.Register(h)

	b, err := NewBuilder(reg, "hello", "fake+url://x", "", "")
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src", "hello"), 0o755); err != nil {
		t.Fatal(err)
	}

	bc := build.NewContext(root, nil, nil)
	l := label.MustNew(label.KindCheckout, "hello", "", label.TagCheckedOut, "")
	if err := b.BuildLabel(context.Background(), bc, l); err != nil {
		t.Fatal(err)
	}
	if len(h.ops) != 0 {
		t.Errorf("existing working copy was checked out again: %v", h.ops)
	}
}

func TestBuilderNestedCheckoutDir(t *testing.T) {
	h := &fakeHandler{}
	reg := NewRegistry()
	reg.Register(h)

	b, err := NewBuilder(reg, "zlib", "fake+url://x", "", "")
	if err != nil {
		t.Fatal(err)
	}
	b.SetDir("libs/zlib")

	root := t.TempDir()
	bc := build.NewContext(root, nil, nil)
	l := label.MustNew(label.KindCheckout, "zlib", "", label.TagCheckedOut, "")
	if err := b.BuildLabel(context.Background(), bc, l); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(root, "src", "libs", "zlib")); err != nil {
		t.Errorf("checkout dir not at its declared path: %v", err)
	}
}

func TestBuilderDomainCheckoutDir(t *testing.T) {
	h := &fakeHandler{}
	reg := NewRegistry()
	reg.Register(h)

	b, err := NewBuilder(reg, "kernel", "fake+url://x", "", "")
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	bc := build.NewContext(root, nil, nil)
	l := label.MustNew(label.KindCheckout, "kernel", "", label.TagCheckedOut, "net(wifi)")
	if err := b.BuildLabel(context.Background(), bc, l); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "domains", "net", "domains", "wifi", "src", "kernel")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("checkout dir not under domain subtree: %v", err)
	}
}

func TestBuilderRejectsNonCheckout(t *testing.T) {
	reg := NewRegistry()
	b, err := NewBuilder(reg, "hello", "git+url://x", "", "")
	if err != nil {
		t.Fatal(err)
	}
	bc := build.NewContext(t.TempDir(), nil, nil)
	l := label.MustNew(label.KindPackage, "hello", "", label.TagBuilt, "")
	if err := b.BuildLabel(context.Background(), bc, l); err == nil {
		t.Fatal("package label accepted by checkout builder")
	}
}

func TestNewBuilderErrors(t *testing.T) {
	reg := NewRegistry()
	if _, err := NewBuilder(reg, "x", "no-scheme-here", "", ""); err == nil {
		t.Error("malformed repo URL accepted")
	}
	if _, err := NewBuilder(reg, "x", "fossil+url://x", "", ""); !errors.Is(err, errors.ErrCodeUnknownScheme) {
		t.Errorf("err = %v, want unknown-scheme", err)
	}
}

func TestSubversionUpdateToleratesConflicts(t *testing.T) {
	// A stub svn that exits non-zero, the way a conflicted update does.
	bin := t.TempDir()
	script := "#!/bin/sh\nexit 1\n"
	if err := os.WriteFile(filepath.Join(bin, "svn"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	var buf strings.Builder
	r := &shell.Runner{Logger: log.New(&buf), Stdout: io.Discard, Stderr: io.Discard}
	co := &Checkout{Name: "hello", Dir: t.TempDir()}

	if err := (Subversion{}).Update(context.Background(), r, co); err != nil {
		t.Fatalf("conflicted update failed the walk: %v", err)
	}
	if !strings.Contains(buf.String(), "resolve by hand") {
		t.Error("conflicted update did not warn the user")
	}
}

func TestPinned(t *testing.T) {
	tests := []struct {
		rev  string
		want bool
	}{
		{"", false},
		{"HEAD", false},
		{"abc123", true},
	}
	for _, tt := range tests {
		co := Checkout{Revision: tt.rev}
		if co.Pinned() != tt.want {
			t.Errorf("Pinned(%q) = %v, want %v", tt.rev, co.Pinned(), tt.want)
		}
	}
}
