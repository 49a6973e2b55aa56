package recipe

import "github.com/qiniu/x/gsh"

// -----------------------------------------------------------------------------

// Identity is the immutable descriptive tuple of a recipe. It is set
// once at definition time and never mutated.
type Identity struct {
	Name        string
	Version     string
	PackageType string
	License     string
	Author      string
	URL         string
	Description string
}

// Recipe declares how one native library version is configured, built,
// tested, and packaged. The decision logic of a recipe lives in its
// stage callbacks; everything else is static metadata. The embedded
// gsh.App gives callbacks shell helpers for ad-hoc tool invocation.
type Recipe struct {
	gsh.App

	identity Identity

	fConfigOptions func(s *Settings, o *Options)
	fConfigure     func(s *Settings, o *Options)
	fValidate      func(s *Settings) error
	fRequire       func(d *Deps) error
	fExport        func(m *ExportManifest)
	fGenerate      func(ctx *Context) error
	fBuild         func(ctx *Context) error
	fTest          func(ctx *Context) error
	fPackage       func(ctx *Context) error
	fPackageInfo   func(info *CppInfo)
}

// New creates a recipe with the given identity.
func New(id Identity) *Recipe {
	r := &Recipe{identity: id}
	gsh.InitApp(&r.App)
	return r
}

// Identity returns the recipe's descriptive tuple.
func (r *Recipe) Identity() Identity {
	return r.identity
}

// -----------------------------------------------------------------------------
// Callback registration. Stages without a registered callback are
// skipped by the driver.

// OnConfigOptions registers the platform-dependent narrowing of the
// option domain (runs before user overrides are applied).
func (r *Recipe) OnConfigOptions(f func(s *Settings, o *Options)) {
	r.fConfigOptions = f
}

// OnConfigure registers the value-dependent narrowing of the option
// domain (runs after user overrides are applied).
func (r *Recipe) OnConfigure(f func(s *Settings, o *Options)) {
	r.fConfigure = f
}

// OnValidate registers build-context validation, e.g. a minimum
// language-standard gate.
func (r *Recipe) OnValidate(f func(s *Settings) error) {
	r.fValidate = f
}

// OnRequire registers the declaration of runtime and build/test-only
// requirements.
func (r *Recipe) OnRequire(f func(d *Deps) error) {
	r.fRequire = f
}

// OnExport registers the declaration of source paths that must travel
// with the recipe.
func (r *Recipe) OnExport(f func(m *ExportManifest)) {
	r.fExport = f
}

// OnGenerate registers extra build-tool input generation beyond the
// standard descriptor files.
func (r *Recipe) OnGenerate(f func(ctx *Context) error) {
	r.fGenerate = f
}

// OnBuild registers the configure+build invocation of the external
// build tool.
func (r *Recipe) OnBuild(f func(ctx *Context) error) {
	r.fBuild = f
}

// OnTest registers the test-run invocation. The driver gates it on the
// skip-tests conf.
func (r *Recipe) OnTest(f func(ctx *Context) error) {
	r.fTest = f
}

// OnPackage registers artifact installation into the package layout.
func (r *Recipe) OnPackage(f func(ctx *Context) error) {
	r.fPackage = f
}

// OnPackageInfo registers the consumer-metadata declaration.
func (r *Recipe) OnPackageInfo(f func(info *CppInfo)) {
	r.fPackageInfo = f
}

// -----------------------------------------------------------------------------
// Callback invocation, used by the lifecycle driver.

func (r *Recipe) ConfigOptions(s *Settings, o *Options) {
	if r.fConfigOptions != nil {
		r.fConfigOptions(s, o)
	}
}

func (r *Recipe) Configure(s *Settings, o *Options) {
	if r.fConfigure != nil {
		r.fConfigure(s, o)
	}
}

func (r *Recipe) Validate(s *Settings) error {
	if r.fValidate != nil {
		return r.fValidate(s)
	}
	return nil
}

func (r *Recipe) Require(d *Deps) error {
	if r.fRequire != nil {
		return r.fRequire(d)
	}
	return nil
}

func (r *Recipe) Export(m *ExportManifest) {
	if r.fExport != nil {
		r.fExport(m)
	}
}

func (r *Recipe) Generate(ctx *Context) error {
	if r.fGenerate != nil {
		return r.fGenerate(ctx)
	}
	return nil
}

func (r *Recipe) Build(ctx *Context) error {
	if r.fBuild != nil {
		return r.fBuild(ctx)
	}
	return nil
}

func (r *Recipe) Test(ctx *Context) error {
	if r.fTest != nil {
		return r.fTest(ctx)
	}
	return nil
}

func (r *Recipe) Package(ctx *Context) error {
	if r.fPackage != nil {
		return r.fPackage(ctx)
	}
	return nil
}

func (r *Recipe) PackageInfo(info *CppInfo) {
	if r.fPackageInfo != nil {
		r.fPackageInfo(info)
	}
}
