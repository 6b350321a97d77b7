package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/weldbuild/weld/pkg/errors"
)

// twoLevelTree builds a workspace with a sub-domain holding another
// sub-domain: <root>/domains/outer/domains/inner.
func twoLevelTree(t *testing.T) (root, outer, inner string) {
	t.Helper()
	root = t.TempDir()
	outer = filepath.Join(root, "domains", "outer")
	inner = filepath.Join(outer, "domains", "inner")

	for _, dir := range []string{root, outer, inner} {
		if err := Create(dir); err != nil {
			t.Fatal(err)
		}
	}
	if err := MarkAsDomain(outer, "outer"); err != nil {
		t.Fatal(err)
	}
	if err := MarkAsDomain(inner, "inner"); err != nil {
		t.Fatal(err)
	}
	return root, outer, inner
}

func TestFindRoot(t *testing.T) {
	root, outer, inner := twoLevelTree(t)

	deep := filepath.Join(inner, "src", "kernel", "drivers")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		start      string
		wantDomain string
	}{
		{root, ""},
		{filepath.Join(root, "domains"), ""},
		{outer, "outer"},
		{inner, "outer(inner)"},
		{deep, "outer(inner)"},
	}
	for _, tt := range tests {
		gotRoot, gotDomain, err := FindRoot(tt.start)
		if err != nil {
			t.Errorf("FindRoot(%s): %v", tt.start, err)
			continue
		}
		if gotRoot != root {
			t.Errorf("FindRoot(%s) root = %s, want %s", tt.start, gotRoot, root)
		}
		if gotDomain != tt.wantDomain {
			t.Errorf("FindRoot(%s) domain = %q, want %q", tt.start, gotDomain, tt.wantDomain)
		}
	}
}

func TestFindRootOutsideWorkspace(t *testing.T) {
	_, _, err := FindRoot(t.TempDir())
	if !errors.Is(err, errors.ErrCodeNotInWorkspace) {
		t.Fatalf("err = %v, want not-in-workspace", err)
	}
	if !errors.IsUser(err) {
		t.Error("not-in-workspace should be a user error")
	}
}

func TestIsSubdomain(t *testing.T) {
	root, outer, _ := twoLevelTree(t)
	if IsSubdomain(root) {
		t.Error("top-level root reported as sub-domain")
	}
	if !IsSubdomain(outer) {
		t.Error("sub-domain root not reported as such")
	}
}

func TestMarkAsDomainRequiresWorkspace(t *testing.T) {
	if err := MarkAsDomain(t.TempDir(), "x"); !errors.Is(err, errors.ErrCodeNotInWorkspace) {
		t.Errorf("err = %v, want not-in-workspace", err)
	}
}

func TestDomainNameFrom(t *testing.T) {
	root, outer, inner := twoLevelTree(t)

	tests := []struct {
		dir  string
		want string
	}{
		{root, ""},
		{outer, "outer"},
		{inner, "outer(inner)"},
		{filepath.Join(inner, "src", "kernel"), "outer(inner)"},
	}
	for _, tt := range tests {
		got, err := DomainNameFrom(root, tt.dir)
		if err != nil {
			t.Errorf("DomainNameFrom(%s): %v", tt.dir, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DomainNameFrom(%s) = %q, want %q", tt.dir, got, tt.want)
		}
	}

	if _, err := DomainNameFrom(root, filepath.Dir(root)); err == nil {
		t.Error("path above root accepted")
	}
}

func TestLocate(t *testing.T) {
	root, _, _ := twoLevelTree(t)

	tests := []struct {
		path string
		want Place
	}{
		{root, Place{Type: DirRoot}},
		{filepath.Join(root, "src"), Place{Type: DirCheckout}},
		{filepath.Join(root, "src", "kernel"), Place{Type: DirCheckout, Name: "kernel"}},
		{filepath.Join(root, "src", "kernel", "drivers", "net"),
			Place{Type: DirCheckout, Name: "kernel", Rest: []string{"drivers", "net"}}},
		{filepath.Join(root, "obj", "kernel", "arm"),
			Place{Type: DirObject, Name: "kernel", Role: "arm"}},
		{filepath.Join(root, "install", "arm"), Place{Type: DirInstall, Role: "arm"}},
		{filepath.Join(root, "deploy", "firmware"), Place{Type: DirDeploy, Name: "firmware"}},
		{filepath.Join(root, "versions"), Place{Type: DirOther, Rest: []string{"versions"}}},
		{filepath.Join(root, "domains", "outer", "src", "boot"),
			Place{Type: DirCheckout, Domain: "outer", Name: "boot"}},
		{filepath.Join(root, "domains", "outer", "domains", "inner", "obj", "app", "x86"),
			Place{Type: DirObject, Domain: "outer(inner)", Name: "app", Role: "x86"}},
	}
	for _, tt := range tests {
		got, err := Locate(root, tt.path, nil)
		if err != nil {
			t.Errorf("Locate(%s): %v", tt.path, err)
			continue
		}
		if got.Type != tt.want.Type || got.Domain != tt.want.Domain ||
			got.Name != tt.want.Name || got.Role != tt.want.Role {
			t.Errorf("Locate(%s) = %+v, want %+v", tt.path, got, tt.want)
		}
		if len(got.Rest) != len(tt.want.Rest) {
			t.Errorf("Locate(%s) rest = %v, want %v", tt.path, got.Rest, tt.want.Rest)
		}
	}

	if _, err := Locate(root, filepath.Dir(root), nil); !errors.Is(err, errors.ErrCodeNotInWorkspace) {
		t.Errorf("path outside workspace: err = %v, want not-in-workspace", err)
	}
}

func TestLocateNestedCheckouts(t *testing.T) {
	root := t.TempDir()
	if err := Create(root); err != nil {
		t.Fatal(err)
	}
	// "libs" and "libs/zlib" are distinct checkouts; the longer
	// directory must win over its prefix.
	paths := CheckoutPaths{
		"zlib":    "libs/zlib",
		"libcore": "libs",
		"busybox": "tools/busybox",
	}

	tests := []struct {
		path string
		want Place
	}{
		{filepath.Join(root, "src", "libs", "zlib"),
			Place{Type: DirCheckout, Name: "zlib"}},
		{filepath.Join(root, "src", "libs", "zlib", "contrib"),
			Place{Type: DirCheckout, Name: "zlib", Rest: []string{"contrib"}}},
		{filepath.Join(root, "src", "libs", "other"),
			Place{Type: DirCheckout, Name: "libcore", Rest: []string{"other"}}},
		{filepath.Join(root, "src", "libs"),
			Place{Type: DirCheckout, Name: "libcore"}},
		{filepath.Join(root, "src", "tools", "busybox", "shell"),
			Place{Type: DirCheckout, Name: "busybox", Rest: []string{"shell"}}},
		// Unindexed checkouts still live directly under src/.
		{filepath.Join(root, "src", "kernel", "drivers"),
			Place{Type: DirCheckout, Name: "kernel", Rest: []string{"drivers"}}},
	}
	for _, tt := range tests {
		got, err := Locate(root, tt.path, paths)
		if err != nil {
			t.Errorf("Locate(%s): %v", tt.path, err)
			continue
		}
		if got.Name != tt.want.Name || len(got.Rest) != len(tt.want.Rest) {
			t.Errorf("Locate(%s) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestPlaceString(t *testing.T) {
	p := Place{Type: DirObject, Name: "app", Role: "x86", Domain: "outer"}
	want := "object app{x86} in domain outer"
	if got := p.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestParsePackageSpec(t *testing.T) {
	tests := []struct {
		in         string
		name, role string
		wantErr    bool
	}{
		{"hello", "hello", "", false},
		{"hello{x86}", "hello", "x86", false},
		{"hello{", "", "", true},
	}
	for _, tt := range tests {
		name, role, err := ParsePackageSpec(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParsePackageSpec(%q) err = %v", tt.in, err)
			continue
		}
		if name != tt.name || role != tt.role {
			t.Errorf("ParsePackageSpec(%q) = %q, %q", tt.in, name, role)
		}
	}
}

func TestLocalPackages(t *testing.T) {
	root, _, _ := twoLevelTree(t)
	idx := CheckoutIndex{
		"kernel": {"kernel{arm}", "kernel{x86}"},
		"app":    {"app{x86}"},
		"zlib":   {"zlib{x86}"},
	}
	paths := CheckoutPaths{"zlib": "libs/zlib"}

	tests := []struct {
		path string
		want []string
	}{
		{filepath.Join(root, "src", "kernel"), []string{"kernel{arm}", "kernel{x86}"}},
		{filepath.Join(root, "src", "kernel", "drivers", "net"), []string{"kernel{arm}", "kernel{x86}"}},
		{filepath.Join(root, "src", "libs", "zlib"), []string{"zlib{x86}"}},
		{filepath.Join(root, "obj", "kernel", "arm"), []string{"kernel{arm}"}},
		{filepath.Join(root, "install", "x86"), []string{"app{x86}", "kernel{x86}", "zlib{x86}"}},
		{filepath.Join(root, "deploy", "firmware"), nil},
		{root, nil},
	}
	for _, tt := range tests {
		got, err := LocalPackages(root, tt.path, idx, paths)
		if err != nil {
			t.Errorf("LocalPackages(%s): %v", tt.path, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("LocalPackages(%s) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("LocalPackages(%s) = %v, want %v", tt.path, got, tt.want)
				break
			}
		}
	}
}
