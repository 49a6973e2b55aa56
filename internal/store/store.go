package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"

	"github.com/kilnpkg/kiln/pkgs/gnu"
	"github.com/kilnpkg/kiln/pkgs/ref"
	"github.com/kilnpkg/kiln/recipe"
)

// Store is the local package store. Layout:
//
//	root/
//	  <name>/
//	    <version>/   # one installed package layout per version
//	      include/
//	      lib/
//	      cmake/
//	      ...
type Store struct {
	root string
}

// ErrNotFound reports that a name/version pair is not in the store.
var ErrNotFound = errors.New("package not found in store")

// Default opens the store at its standard location under the user
// cache directory.
func Default() *Store {
	return Open(filepath.Join(xdg.CacheHome, "kiln", "store"))
}

// Open opens a store rooted at the given directory.
func Open(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory a package would occupy, whether or not it
// is present.
func (s *Store) Dir(r ref.Ref) string {
	return filepath.Join(s.root, r.Name, r.Version)
}

// Lookup returns the package directory for an exact pin, or
// ErrNotFound.
func (s *Store) Lookup(r ref.Ref) (string, error) {
	dir := s.Dir(r)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", r, ErrNotFound)
	}
	return dir, nil
}

// Versions returns the versions of a package present in the store,
// newest first. Upstream version strings are not always semver, so
// ordering uses GNU filevercmp rules.
func (s *Store) Versions(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return gnu.Compare(versions[i], versions[j]) > 0
	})
	return versions, nil
}

// Packages returns every name/version present in the store, sorted by
// name then newest version first.
func (s *Store) Packages() ([]ref.Ref, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var refs []ref.Ref
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		versions, err := s.Versions(e.Name())
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			refs = append(refs, ref.Ref{Name: e.Name(), Version: v})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Name != refs[j].Name {
			return refs[i].Name < refs[j].Name
		}
		return gnu.Compare(refs[i].Version, refs[j].Version) > 0
	})
	return refs, nil
}

// Put publishes a package layout directory into the store, replacing
// any previous content for the same pin.
func (s *Store) Put(r ref.Ref, srcDir string) error {
	dst := s.Dir(r)
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return recipe.Copy(".", srcDir, dst)
}
