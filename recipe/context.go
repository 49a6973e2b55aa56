package recipe

import "github.com/kilnpkg/kiln/pkgs/ref"

// Conf carries the driving process's behavior toggles. The one toggle
// with externally visible effect is SkipTest.
type Conf struct {
	SkipTest bool `yaml:"skip_test"`
}

// ResolvedDep is the store's answer for one declared requirement.
type ResolvedDep struct {
	Ref  ref.Ref
	Role Role
	// Dir is the package root containing include/, lib/, etc.
	Dir string
	// HeaderOnly is true when the package ships headers but no
	// linkable artifacts.
	HeaderOnly bool
}

// Context is handed to the generate, build, test, and package
// callbacks. Its fields are finalized before the first callback runs
// and are not mutated afterwards.
type Context struct {
	Settings *Settings
	Options  *Options
	Conf     Conf

	// SourceDir is the tree being built: the export location when the
	// recipe was exported, or the recipe's own directory when building
	// in place.
	SourceDir string
	// BuildDir is owned by the build stage.
	BuildDir string
	// PackageDir is owned by the package stage.
	PackageDir string
	// GeneratorsDir holds the descriptor files written by the
	// generate stage.
	GeneratorsDir string

	// Deps is the resolver output for the declared requirements.
	Deps []ResolvedDep
}
