package recipe

import (
	"slices"

	"github.com/kilnpkg/kiln/pkgs/ref"
)

// Role determines whether a requirement propagates to consumers of the
// package or is visible only while building and testing this recipe.
type Role int

const (
	// RoleRuntime requirements are part of the package's public
	// dependency surface.
	RoleRuntime Role = iota
	// RoleBuildTest requirements are used only during this recipe's
	// own build and test stages.
	RoleBuildTest
)

func (r Role) String() string {
	if r == RoleBuildTest {
		return "build-test"
	}
	return "runtime"
}

// Requirement is a declared dependency: an exact version pin plus a
// propagation role. Resolution is delegated to the package store.
type Requirement struct {
	Ref  ref.Ref
	Role Role
}

// Deps collects the requirements declared by a recipe.
type Deps struct {
	reqs []Requirement
}

// Require declares a runtime dependency from a "name/version" spec.
func (d *Deps) Require(spec string) error {
	return d.add(spec, RoleRuntime)
}

// TestRequire declares a build/test-only dependency from a
// "name/version" spec. It never propagates to consumers.
func (d *Deps) TestRequire(spec string) error {
	return d.add(spec, RoleBuildTest)
}

func (d *Deps) add(spec string, role Role) error {
	r, err := ref.Parse(spec)
	if err != nil {
		return Configf("requirement %q: %v", spec, err)
	}
	d.reqs = append(d.reqs, Requirement{Ref: r, Role: role})
	return nil
}

// Requirements returns the declared requirements in declaration order.
func (d *Deps) Requirements() []Requirement {
	return slices.Clone(d.reqs)
}

// Runtime returns only the requirements that propagate to consumers.
func (d *Deps) Runtime() []Requirement {
	var out []Requirement
	for _, req := range d.reqs {
		if req.Role == RoleRuntime {
			out = append(out, req)
		}
	}
	return out
}
