package build

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/weldbuild/weld/pkg/domain"
	"github.com/weldbuild/weld/pkg/errors"
	"github.com/weldbuild/weld/pkg/label"
)

// TagStore records which labels have been achieved, so that repeated
// build runs skip work that is already done.
//
// Transient labels (label.IsTemporary) are remembered only for the
// lifetime of the store, never persisted.
type TagStore interface {
	// Satisfied reports whether the label's tag has been reached. A tag
	// counts as reached when it or any later tag of the same lifecycle
	// is recorded.
	Satisfied(l label.Label) (bool, error)

	// Set records the label's tag as achieved.
	Set(l label.Label) error

	// Clear forgets the label's tag.
	Clear(l label.Label) error

	// ClearFrom forgets the label's tag and every later tag of the same
	// lifecycle for the same unit. Clearing package:foo/built also
	// clears installed and postinstalled, which is what forces a
	// rebuild.
	ClearFrom(l label.Label) error
}

// laterTags returns l's tag followed by the later tags of its lifecycle.
// For tags outside the ordered lifecycle (clean, deployed, ...) it
// returns just the tag itself.
func laterTags(l label.Label) []label.Tag {
	seq := label.Lifecycle(l.Kind)
	for i, t := range seq {
		if t == l.Tag {
			return seq[i:]
		}
	}
	return []label.Tag{l.Tag}
}

func checkStorable(l label.Label) error {
	if l.Name == "*" || l.Role == "*" || l.Tag == "*" {
		return errors.New(errors.ErrCodeInternal, "cannot store wildcard label %s", l)
	}
	return nil
}

// MemStore is an in-memory TagStore. It backs tests and dry runs.
type MemStore struct {
	mu   sync.Mutex
	tags map[string]bool
}

// NewMemStore creates an empty in-memory tag store.
func NewMemStore() *MemStore {
	return &MemStore{tags: make(map[string]bool)}
}

func (s *MemStore) Satisfied(l label.Label) (bool, error) {
	if err := checkStorable(l); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range laterTags(l) {
		if s.tags[l.WithTag(t).String()] {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) Set(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[l.String()] = true
	return nil
}

func (s *MemStore) Clear(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, l.String())
	return nil
}

func (s *MemStore) ClearFrom(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range laterTags(l) {
		delete(s.tags, l.WithTag(t).String())
	}
	return nil
}

// Labels returns the recorded labels in sorted order. Test helper.
func (s *MemStore) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tags))
	for k := range s.tags {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DirStore persists tags as marker files under the workspace tree:
//
//	<root>/.weld/tags/<kind>/<name>[/<role>]/<tag>
//
// Labels carrying a domain are stored under that domain's subtree, so
// each subdomain owns its own tag state:
//
//	<root>/domains/<a>/domains/<b>/.weld/tags/...
//
// Transient labels are kept in memory only.
type DirStore struct {
	root string
	mem  *MemStore
}

// NewDirStore creates a tag store rooted at the workspace root (the
// directory containing .weld).
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root, mem: NewMemStore()}
}

func (s *DirStore) path(l label.Label) (string, error) {
	dir := s.root
	if l.Domain != "" {
		sub, err := domain.Subpath(l.Domain)
		if err != nil {
			return "", err
		}
		dir = filepath.Join(dir, sub)
	}
	dir = filepath.Join(dir, ".weld", "tags", string(l.Kind), l.Name)
	if l.Role != "" {
		dir = filepath.Join(dir, l.Role)
	}
	return filepath.Join(dir, string(l.Tag)), nil
}

func (s *DirStore) Satisfied(l label.Label) (bool, error) {
	if err := checkStorable(l); err != nil {
		return false, err
	}
	if l.IsTemporary() {
		return s.mem.Satisfied(l)
	}
	for _, t := range laterTags(l) {
		p, err := s.path(l.WithTag(t))
		if err != nil {
			return false, err
		}
		if _, err := os.Stat(p); err == nil {
			return true, nil
		} else if !os.IsNotExist(err) {
			return false, errors.Wrap(errors.ErrCodeInternal, err, "reading tag %s", l)
		}
	}
	return false, nil
}

func (s *DirStore) Set(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	if l.IsTemporary() {
		return s.mem.Set(l)
	}
	p, err := s.path(l)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating tag directory for %s", l)
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(p, []byte(stamp), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing tag %s", l)
	}
	return nil
}

func (s *DirStore) Clear(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	if l.IsTemporary() {
		return s.mem.Clear(l)
	}
	p, err := s.path(l)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "clearing tag %s", l)
	}
	return nil
}

func (s *DirStore) ClearFrom(l label.Label) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	for _, t := range laterTags(l) {
		if err := s.Clear(l.WithTag(t)); err != nil {
			return err
		}
	}
	return nil
}
