// Package workspace finds and classifies weld trees on disk.
//
// A workspace root is a directory holding a .weld marker directory.
// Sub-domains are whole workspaces grafted in under domains/<name>/;
// their own .weld carries an am_subdomain marker so that climbing out
// of one keeps going to the enclosing root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/weldbuild/weld/pkg/domain"
	"github.com/weldbuild/weld/pkg/errors"
)

// MarkerDir is the directory marking a workspace root.
const MarkerDir = ".weld"

// subdomainMarker inside MarkerDir marks a root that is itself a
// sub-domain of an enclosing workspace.
const subdomainMarker = "am_subdomain"

// Create initializes dir as a workspace root by creating its marker.
func Create(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, MarkerDir), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "initializing workspace at %s", dir)
	}
	return nil
}

// MarkAsDomain marks the workspace at dir as a sub-domain. The marker
// records the domain's name for the curious; FindRoot derives names
// from the directory structure, not from the marker's content.
func MarkAsDomain(dir, name string) error {
	marker := filepath.Join(dir, MarkerDir)
	if _, err := os.Stat(marker); err != nil {
		return errors.Wrap(errors.ErrCodeNotInWorkspace, err, "%s is not a workspace root", dir)
	}
	if err := os.WriteFile(filepath.Join(marker, subdomainMarker), []byte(name+"\n"), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marking %s as sub-domain", dir)
	}
	return nil
}

// IsSubdomain reports whether the workspace at dir is a sub-domain
// root.
func IsSubdomain(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, MarkerDir, subdomainMarker))
	return err == nil
}

func isRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerDir))
	return err == nil && info.IsDir()
}

// FindRoot climbs from start towards the filesystem root looking for a
// workspace marker. Markers belonging to sub-domains are noted and
// climbed past, so the returned root is always the outermost
// workspace, along with the domain name of the tree start was inside
// ("" when start is in the top-level workspace directly).
func FindRoot(start string) (root, domainName string, err error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInternal, err, "resolving %s", start)
	}

	for {
		if isRoot(dir) {
			if !IsSubdomain(dir) {
				return dir, domainName, nil
			}
			// The first marker found is the innermost domain; each
			// enclosing one wraps around what we have so far.
			name := filepath.Base(dir)
			parent := filepath.Dir(dir)
			if filepath.Base(parent) != "domains" {
				return "", "", errors.New(errors.ErrCodeNotInWorkspace,
					"sub-domain %s is not under a domains/ directory", dir)
			}
			if domainName == "" {
				domainName = name
			} else {
				domainName = name + "(" + domainName + ")"
			}
			dir = filepath.Dir(parent)
			continue
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", errors.New(errors.ErrCodeNotInWorkspace,
				"%s is not inside a weld workspace", start)
		}
		dir = parent
	}
}

// DomainNameFrom derives the domain name of dir from its position
// below root: each domains/<name> level contributes one nesting.
// dir at the root itself yields "".
func DomainNameFrom(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New(errors.ErrCodeNotInWorkspace, "%s is not below %s", dir, root)
	}
	var parts []string
	segs := splitPath(rel)
	for len(segs) >= 2 && segs[0] == "domains" {
		parts = append(parts, segs[1])
		segs = segs[2:]
	}
	return domain.Join(parts), nil
}

func splitPath(p string) []string {
	if p == "." || p == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(p), "/")
}

// DirType classifies where in a workspace tree a path sits.
type DirType int

const (
	// DirRoot is the workspace root (or a domain's root) itself.
	DirRoot DirType = iota
	// DirCheckout is below src/.
	DirCheckout
	// DirObject is below obj/.
	DirObject
	// DirInstall is below install/.
	DirInstall
	// DirDeploy is below deploy/.
	DirDeploy
	// DirOther is inside the workspace but in none of the conventional
	// trees.
	DirOther
)

func (t DirType) String() string {
	switch t {
	case DirRoot:
		return "root"
	case DirCheckout:
		return "checkout"
	case DirObject:
		return "object"
	case DirInstall:
		return "install"
	case DirDeploy:
		return "deploy"
	case DirOther:
		return "other"
	default:
		return fmt.Sprintf("dirtype(%d)", int(t))
	}
}

// Place describes a path's position in a workspace.
type Place struct {
	// Type says which conventional tree the path is in.
	Type DirType

	// Domain is the domain the path belongs to, "" for the top level.
	Domain string

	// Name is the checkout name (for DirCheckout), package name (for
	// DirObject), or deployment name (for DirDeploy).
	Name string

	// Role is the role, for DirObject and DirInstall paths.
	Role string

	// Rest holds the path segments below the classified position.
	Rest []string
}

// String renders a place the way `weld where` prints it.
func (p Place) String() string {
	s := p.Type.String()
	if p.Name != "" {
		s += " " + p.Name
	}
	if p.Role != "" {
		s += "{" + p.Role + "}"
	}
	if p.Domain != "" {
		s += " in domain " + p.Domain
	}
	return s
}

// CheckoutPaths maps a checkout name to its directory below src/, as
// a slash-separated relative path. Checkouts whose directory is just
// their name may be omitted.
type CheckoutPaths map[string]string

// resolve finds the checkout whose directory matches the longest
// prefix of segs. Falls back to treating the first segment as the
// checkout name, which is where unindexed checkouts live.
func (cp CheckoutPaths) resolve(segs []string) (name string, rest []string) {
	best := -1
	for n, p := range cp {
		want := splitPath(p)
		if len(want) == 0 || len(want) > len(segs) || len(want) <= best {
			continue
		}
		match := true
		for i := range want {
			if want[i] != segs[i] {
				match = false
				break
			}
		}
		if match {
			name, best = n, len(want)
		}
	}
	if best >= 0 {
		return name, segs[best:]
	}
	return segs[0], segs[1:]
}

// Locate classifies path within the workspace at root. The layout
// conventions are src/<checkout>, obj/<package>/<role>,
// install/<role>, and deploy/<deployment>, each possibly below
// domains/<name> levels. checkouts resolves checkout directories that
// are nested below src/ rather than directly in it; nil means every
// checkout lives at src/<name>.
func Locate(root, path string, checkouts CheckoutPaths) (Place, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Place{}, errors.Wrap(errors.ErrCodeInternal, err, "resolving %s", path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Place{}, errors.New(errors.ErrCodeNotInWorkspace, "%s is not below %s", path, root)
	}

	segs := splitPath(rel)
	var domParts []string
	for len(segs) >= 2 && segs[0] == "domains" {
		domParts = append(domParts, segs[1])
		segs = segs[2:]
	}
	p := Place{Domain: domain.Join(domParts)}

	if len(segs) == 0 {
		p.Type = DirRoot
		return p, nil
	}

	switch segs[0] {
	case "src":
		p.Type = DirCheckout
		if len(segs) > 1 {
			p.Name, p.Rest = checkouts.resolve(segs[1:])
		}
	case "obj":
		p.Type = DirObject
		if len(segs) > 1 {
			p.Name = segs[1]
		}
		if len(segs) > 2 {
			p.Role = segs[2]
			p.Rest = segs[3:]
		}
	case "install":
		p.Type = DirInstall
		if len(segs) > 1 {
			p.Role = segs[1]
			p.Rest = segs[2:]
		}
	case "deploy":
		p.Type = DirDeploy
		if len(segs) > 1 {
			p.Name = segs[1]
			p.Rest = segs[2:]
		}
	default:
		p.Type = DirOther
		p.Rest = segs
	}
	return p, nil
}

// ParsePackageSpec splits a "name{role}" string, role optional.
func ParsePackageSpec(spec string) (name, role string, err error) {
	if i := strings.IndexByte(spec, '{'); i >= 0 {
		if !strings.HasSuffix(spec, "}") {
			return "", "", errors.New(errors.ErrCodeInvalidLabel, "malformed package spec %q", spec)
		}
		return spec[:i], spec[i+1 : len(spec)-1], nil
	}
	return spec, "", nil
}

// CheckoutIndex maps a checkout name to the "name{role}" packages
// built from it.
type CheckoutIndex map[string][]string

// LocalPackages names the packages relevant to dir: inside a checkout
// it is the packages built from that checkout, inside an object or
// install tree it is the package or role the directory belongs to.
// Elsewhere it returns nothing.
func LocalPackages(root, dir string, idx CheckoutIndex, checkouts CheckoutPaths) ([]string, error) {
	place, err := Locate(root, dir, checkouts)
	if err != nil {
		return nil, err
	}
	switch place.Type {
	case DirCheckout:
		if place.Name == "" {
			return nil, nil
		}
		pkgs := append([]string(nil), idx[place.Name]...)
		sort.Strings(pkgs)
		return pkgs, nil
	case DirObject:
		if place.Name == "" {
			return nil, nil
		}
		spec := place.Name
		if place.Role != "" {
			spec += "{" + place.Role + "}"
		}
		return []string{spec}, nil
	case DirInstall:
		if place.Role == "" {
			return nil, nil
		}
		var pkgs []string
		for _, specs := range idx {
			for _, spec := range specs {
				if strings.HasSuffix(spec, "{"+place.Role+"}") {
					pkgs = append(pkgs, spec)
				}
			}
		}
		sort.Strings(pkgs)
		return pkgs, nil
	}
	return nil, nil
}
