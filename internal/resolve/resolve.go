package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/kilnpkg/kiln/internal/store"
	"github.com/kilnpkg/kiln/recipe"
)

// Resolver turns declared requirements into resolved package
// locations. Requirements carry exact pins, so there is no version
// selection here: a pin either resolves or the whole set fails.
type Resolver interface {
	Resolve(ctx context.Context, reqs []recipe.Requirement) ([]recipe.ResolvedDep, error)
}

// storeResolver resolves requirements against the local package store.
type storeResolver struct {
	st *store.Store
}

// NewStoreResolver returns a Resolver backed by the given store.
func NewStoreResolver(st *store.Store) Resolver {
	return &storeResolver{st: st}
}

func (r *storeResolver) Resolve(ctx context.Context, reqs []recipe.Requirement) ([]recipe.ResolvedDep, error) {
	deps := make([]recipe.ResolvedDep, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir, err := r.st.Lookup(req.Ref)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				available, _ := r.st.Versions(req.Ref.Name)
				return nil, &recipe.ResolutionError{Ref: req.Ref, Available: available}
			}
			return nil, err
		}
		deps = append(deps, recipe.ResolvedDep{
			Ref:        req.Ref,
			Role:       req.Role,
			Dir:        dir,
			HeaderOnly: headerOnly(dir),
		})
	}
	return deps, nil
}

// headerOnly reports whether a package ships headers without linkable
// artifacts.
func headerOnly(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "include")); err != nil {
		return false
	}
	entries, err := os.ReadDir(filepath.Join(dir, "lib"))
	if err != nil {
		return true
	}
	return len(entries) == 0
}
