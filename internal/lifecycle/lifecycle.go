package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/kilnpkg/kiln/internal/generate"
	"github.com/kilnpkg/kiln/internal/resolve"
	"github.com/kilnpkg/kiln/internal/store"
	"github.com/kilnpkg/kiln/pkgs/ref"
	"github.com/kilnpkg/kiln/recipe"
)

// State names a position in the recipe lifecycle. Transitions follow a
// single allowed order; a stage invoked out of order fails with a
// ConfigurationError instead of silently running.
type State int

const (
	StatePending State = iota
	StateConfigured
	StateResolved
	StateGenerated
	StateBuilt
	StateTestedOrSkipped
	StatePackaged
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfigured:
		return "configured"
	case StateResolved:
		return "resolved"
	case StateGenerated:
		return "generated"
	case StateBuilt:
		return "built"
	case StateTestedOrSkipped:
		return "tested-or-skipped"
	case StatePackaged:
		return "packaged"
	case StateTerminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config is the immutable input of a lifecycle run, supplied by the
// driving process before any stage executes.
type Config struct {
	Settings recipe.Settings
	// Options are user overrides applied after the recipe's
	// platform narrowing.
	Options map[string]bool
	Conf    recipe.Conf
	Order   generate.Order

	Resolver resolve.Resolver

	// SourceDir is the tree being built: the export location, or the
	// recipe's own directory when building in place.
	SourceDir string
	// WorkDir is the root under which the build, generators, and
	// package trees are created. Each tree is owned by exactly one
	// stage.
	WorkDir string
}

// Lifecycle drives one recipe through its stages in order. It is not
// safe for concurrent use; the lifecycle is strictly sequential by
// construction.
type Lifecycle struct {
	rcp   *recipe.Recipe
	cfg   Config
	state State
	runID string

	settings recipe.Settings
	options  *recipe.Options
	reqs     []recipe.Requirement
	deps     []recipe.ResolvedDep

	buildDir      string
	generatorsDir string
	packageDir    string

	testsSkipped bool
}

// New prepares a lifecycle for one recipe. No stage runs yet.
func New(rcp *recipe.Recipe, cfg Config) *Lifecycle {
	return &Lifecycle{
		rcp:           rcp,
		cfg:           cfg,
		state:         StatePending,
		runID:         uuid.New().String(),
		settings:      cfg.Settings,
		buildDir:      filepath.Join(cfg.WorkDir, "build"),
		generatorsDir: filepath.Join(cfg.WorkDir, "generators"),
		packageDir:    filepath.Join(cfg.WorkDir, "package"),
	}
}

func (l *Lifecycle) State() State       { return l.state }
func (l *Lifecycle) RunID() string      { return l.runID }
func (l *Lifecycle) PackageDir() string { return l.packageDir }
func (l *Lifecycle) BuildDir() string   { return l.buildDir }
func (l *Lifecycle) TestsSkipped() bool { return l.testsSkipped }

// Options returns the finalized option set. Nil before Configure.
func (l *Lifecycle) Options() *recipe.Options { return l.options }

// Requirements returns the declared requirements. Nil before Resolve.
func (l *Lifecycle) Requirements() []recipe.Requirement {
	return slices.Clone(l.reqs)
}

// guard checks that the lifecycle is in one of the states the stage
// may start from. The stage commits its own transition only after its
// body succeeds, so a failed stage leaves the state where it was and
// later stages still refuse to run.
func (l *Lifecycle) guard(stage string, from ...State) error {
	if !slices.Contains(from, l.state) {
		return recipe.Configf("stage %q invoked in state %q", stage, l.state)
	}
	return nil
}

// Configure finalizes the option set (platform narrowing, user
// overrides, value narrowing) and validates the build context. After
// this stage the options are frozen for the rest of the lifecycle.
func (l *Lifecycle) Configure() error {
	if err := l.guard("configure", StatePending); err != nil {
		return err
	}
	o := recipe.NewOptions()
	l.rcp.ConfigOptions(&l.settings, o)

	names := make([]string, 0, len(l.cfg.Options))
	for name := range l.cfg.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := o.Set(name, l.cfg.Options[name]); err != nil {
			return err
		}
	}

	l.rcp.Configure(&l.settings, o)
	o.Freeze()
	l.options = o

	if err := l.rcp.Validate(&l.settings); err != nil {
		return err
	}
	l.state = StateConfigured
	return nil
}

// Resolve declares the recipe's requirements and hands them to the
// resolver. A pin the resolver cannot satisfy fails the lifecycle; the
// failure is surfaced verbatim.
func (l *Lifecycle) Resolve(ctx context.Context) error {
	if err := l.guard("resolve", StateConfigured); err != nil {
		return err
	}
	var d recipe.Deps
	if err := l.rcp.Require(&d); err != nil {
		return err
	}
	l.reqs = d.Requirements()

	if l.cfg.Resolver != nil && len(l.reqs) > 0 {
		deps, err := l.cfg.Resolver.Resolve(ctx, l.reqs)
		if err != nil {
			return err
		}
		l.deps = deps
	}
	l.state = StateResolved
	return nil
}

// Generate writes the dependency and toolchain descriptors consumed by
// the external build tool, then runs any recipe-specific generation.
func (l *Lifecycle) Generate() error {
	if err := l.guard("generate", StateResolved); err != nil {
		return err
	}
	g := &generate.Generator{Dir: l.generatorsDir, Order: l.cfg.Order}
	if _, err := g.Generate(&l.settings, l.options, l.deps); err != nil {
		return err
	}
	if err := l.rcp.Generate(l.context()); err != nil {
		return err
	}
	l.state = StateGenerated
	return nil
}

// Build invokes the external build tool's configure and build steps
// through the recipe's build callback. Failures are fatal and not
// retried.
func (l *Lifecycle) Build() error {
	if err := l.guard("build", StateGenerated); err != nil {
		return err
	}
	if err := os.MkdirAll(l.buildDir, 0o755); err != nil {
		return err
	}
	if err := l.rcp.Build(l.context()); err != nil {
		return err
	}
	if err := l.writeMetadata(); err != nil {
		return err
	}
	l.state = StateBuilt
	return nil
}

// Test invokes the recipe's test callback unless the skip-tests conf
// is set. A test failure is fatal to this stage but leaves the build
// output of the prior stage intact.
func (l *Lifecycle) Test() error {
	if err := l.guard("test", StateBuilt); err != nil {
		return err
	}
	if l.cfg.Conf.SkipTest {
		l.testsSkipped = true
		l.state = StateTestedOrSkipped
		return nil
	}
	if err := l.rcp.Test(l.context()); err != nil {
		return err
	}
	l.state = StateTestedOrSkipped
	return nil
}

// Package installs build artifacts into the package layout. It may
// only run once the build has at least completed; invoking it earlier
// is a usage error.
func (l *Lifecycle) Package() error {
	if err := l.guard("package", StateBuilt, StateTestedOrSkipped); err != nil {
		return err
	}
	if err := os.MkdirAll(l.packageDir, 0o755); err != nil {
		return err
	}
	if err := l.rcp.Package(l.context()); err != nil {
		return err
	}
	l.state = StatePackaged
	return nil
}

// PackageInfo returns the consumer-visible package description. It is
// pure declaration with no failure modes, so it is not gated on a
// state.
func (l *Lifecycle) PackageInfo() *recipe.CppInfo {
	info := &recipe.CppInfo{}
	l.rcp.PackageInfo(info)
	return info
}

// Publish copies the package layout into the store, making it
// resolvable by downstream recipes, and moves the lifecycle to its
// terminal state.
func (l *Lifecycle) Publish(st *store.Store) error {
	if err := l.guard("publish", StatePackaged); err != nil {
		return err
	}
	id := l.rcp.Identity()
	if err := st.Put(ref.Ref{Name: id.Name, Version: id.Version}, l.packageDir); err != nil {
		return err
	}
	l.state = StateTerminal
	return nil
}

// Run drives configure through package in order. Publishing is left to
// the caller.
func (l *Lifecycle) Run(ctx context.Context) error {
	if err := l.Configure(); err != nil {
		return err
	}
	if err := l.Resolve(ctx); err != nil {
		return err
	}
	if err := l.Generate(); err != nil {
		return err
	}
	if err := l.Build(); err != nil {
		return err
	}
	if err := l.Test(); err != nil {
		return err
	}
	return l.Package()
}

func (l *Lifecycle) context() *recipe.Context {
	return &recipe.Context{
		Settings:      &l.settings,
		Options:       l.options,
		Conf:          l.cfg.Conf,
		SourceDir:     l.cfg.SourceDir,
		BuildDir:      l.buildDir,
		PackageDir:    l.packageDir,
		GeneratorsDir: l.generatorsDir,
		Deps:          slices.Clone(l.deps),
	}
}

// ExportSources copies the recipe's declared source paths from srcDir
// into dstDir so the recipe can be built outside its original working
// tree. A declared path missing from srcDir means the recipe is
// malformed.
func ExportSources(rcp *recipe.Recipe, srcDir, dstDir string) error {
	var m recipe.ExportManifest
	rcp.Export(&m)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	return m.CopyTo(srcDir, dstDir)
}
