package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/kilnpkg/kiln/internal/store"
	"github.com/kilnpkg/kiln/pkgs/ref"
	"github.com/kilnpkg/kiln/recipe"
)

// fakeResolver implements resolve.Resolver for unit testing.
type fakeResolver struct {
	deps  []recipe.ResolvedDep
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, reqs []recipe.Requirement) ([]recipe.ResolvedDep, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.deps, nil
}

// scriptedRecipe returns a recipe whose callbacks append their stage
// name to the trace.
func scriptedRecipe(trace *[]string) *recipe.Recipe {
	r := recipe.New(recipe.Identity{Name: "demo", Version: "1.0.0"})
	r.OnConfigOptions(func(s *recipe.Settings, o *recipe.Options) {
		*trace = append(*trace, "config_options")
		o.Declare("shared", false)
		o.Declare("fPIC", true)
		if s.IsWindows() {
			o.RmSafe("fPIC")
		}
	})
	r.OnConfigure(func(s *recipe.Settings, o *recipe.Options) {
		*trace = append(*trace, "configure")
		if shared, ok := o.Bool("shared"); ok && shared {
			o.RmSafe("fPIC")
		}
	})
	r.OnValidate(func(s *recipe.Settings) error {
		*trace = append(*trace, "validate")
		return nil
	})
	r.OnRequire(func(d *recipe.Deps) error {
		*trace = append(*trace, "require")
		if err := d.Require("fmt/9.1.0"); err != nil {
			return err
		}
		return d.TestRequire("gtest/1.17.0")
	})
	r.OnGenerate(func(ctx *recipe.Context) error {
		*trace = append(*trace, "generate")
		return nil
	})
	r.OnBuild(func(ctx *recipe.Context) error {
		*trace = append(*trace, "build")
		return nil
	})
	r.OnTest(func(ctx *recipe.Context) error {
		*trace = append(*trace, "test")
		return nil
	})
	r.OnPackage(func(ctx *recipe.Context) error {
		*trace = append(*trace, "package")
		return nil
	})
	r.OnPackageInfo(func(info *recipe.CppInfo) {
		info.TargetName = "demo::demo"
		info.Libs = []string{"demo"}
	})
	return r
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Settings:  recipe.Settings{OS: "Linux", Arch: "x86_64", Compiler: "gcc", Cppstd: "20", BuildType: "Release"},
		SourceDir: t.TempDir(),
		WorkDir:   t.TempDir(),
	}
}

func TestRunStageOrder(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	resolver := &fakeResolver{}
	cfg := testConfig(t)
	cfg.Resolver = resolver

	l := New(r, cfg)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"config_options", "configure", "validate", "require", "generate", "build", "test", "package"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
	if l.State() != StatePackaged {
		t.Errorf("state = %v, want packaged", l.State())
	}
	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.calls)
	}

	md, err := ReadMetadata(l.BuildDir())
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if md.RunID != l.RunID() || md.Recipe != "demo/1.0.0" {
		t.Errorf("unexpected metadata: %+v", md)
	}
}

func TestSkipTests(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	cfg := testConfig(t)
	cfg.Conf.SkipTest = true

	l := New(r, cfg)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, stage := range trace {
		if stage == "test" {
			t.Fatal("test stage invoked despite skip_test")
		}
	}
	if !l.TestsSkipped() {
		t.Error("TestsSkipped() = false")
	}
	if l.State() != StatePackaged {
		t.Errorf("state = %v, want packaged", l.State())
	}
}

func TestTestRunsExactlyOnce(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	l := New(r, testConfig(t))

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	count := 0
	for _, stage := range trace {
		if stage == "test" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("test stage invoked %d times, want 1", count)
	}
}

func TestPackageBeforeBuild(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	l := New(r, testConfig(t))

	if err := l.Configure(); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if err := l.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := l.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	err := l.Package()
	var cfgErr *recipe.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Package before build = %v, want ConfigurationError", err)
	}
	for _, stage := range trace {
		if stage == "package" {
			t.Fatal("package callback ran despite ordering error")
		}
	}
}

func TestOutOfOrderStages(t *testing.T) {
	var trace []string
	var cfgErr *recipe.ConfigurationError

	l := New(scriptedRecipe(&trace), testConfig(t))
	if err := l.Build(); !errors.As(err, &cfgErr) {
		t.Errorf("Build in pending state = %v, want ConfigurationError", err)
	}

	l = New(scriptedRecipe(&trace), testConfig(t))
	if err := l.Configure(); err != nil {
		t.Fatal(err)
	}
	if err := l.Configure(); !errors.As(err, &cfgErr) {
		t.Errorf("second Configure = %v, want ConfigurationError", err)
	}
}

func TestFailedBuildBlocksPackage(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	buildErr := &recipe.ExternalToolError{Tool: "cmake", Args: []string{"--build"}, Err: errors.New("exit status 1")}
	r.OnBuild(func(ctx *recipe.Context) error {
		return buildErr
	})

	l := New(r, testConfig(t))
	if err := l.Configure(); err != nil {
		t.Fatal(err)
	}
	if err := l.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.Generate(); err != nil {
		t.Fatal(err)
	}

	if err := l.Build(); !errors.Is(err, buildErr) {
		t.Fatalf("Build = %v, want the build tool's error", err)
	}
	// The failed stage was never reached, so the state stays put.
	if l.State() != StateGenerated {
		t.Errorf("state after failed build = %v, want generated", l.State())
	}

	err := l.Package()
	var cfgErr *recipe.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Package after failed build = %v, want ConfigurationError", err)
	}
	for _, stage := range trace {
		if stage == "package" {
			t.Fatal("package callback ran over an incomplete build tree")
		}
	}
}

func TestFailedConfigureAllowsRetry(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	reject := true
	r.OnValidate(func(s *recipe.Settings) error {
		if reject {
			return recipe.Configf("C++20 is required")
		}
		return nil
	})

	l := New(r, testConfig(t))
	var cfgErr *recipe.ConfigurationError
	if err := l.Configure(); !errors.As(err, &cfgErr) {
		t.Fatalf("Configure = %v, want ConfigurationError", err)
	}
	if l.State() != StatePending {
		t.Errorf("state after failed configure = %v, want pending", l.State())
	}
	if err := l.Resolve(context.Background()); !errors.As(err, &cfgErr) {
		t.Errorf("Resolve after failed configure = %v, want ConfigurationError", err)
	}

	reject = false
	if err := l.Configure(); err != nil {
		t.Fatalf("Configure retry failed: %v", err)
	}
	if l.State() != StateConfigured {
		t.Errorf("state = %v, want configured", l.State())
	}
}

func TestValidateGateStopsLifecycle(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	r.OnValidate(func(s *recipe.Settings) error {
		return recipe.CheckMinCppStd(s, "20")
	})
	resolver := &fakeResolver{}
	cfg := testConfig(t)
	cfg.Settings.Cppstd = "17"
	cfg.Resolver = resolver

	l := New(r, cfg)
	err := l.Run(context.Background())
	var cfgErr *recipe.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Run = %v, want ConfigurationError", err)
	}
	if resolver.calls != 0 {
		t.Error("resolver ran despite failed validation")
	}
}

func TestResolutionFailureSurfacesVerbatim(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	resErr := &recipe.ResolutionError{Ref: ref.Ref{Name: "fmt", Version: "9.1.0"}}
	cfg := testConfig(t)
	cfg.Resolver = &fakeResolver{err: resErr}

	l := New(r, cfg)
	err := l.Run(context.Background())
	var got *recipe.ResolutionError
	if !errors.As(err, &got) || got != resErr {
		t.Fatalf("Run = %v, want the resolver's error verbatim", err)
	}
}

func TestPublish(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	l := New(r, testConfig(t))

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	st := store.Open(t.TempDir())
	if err := l.Publish(st); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if l.State() != StateTerminal {
		t.Errorf("state = %v, want terminal", l.State())
	}
	if _, err := st.Lookup(ref.Ref{Name: "demo", Version: "1.0.0"}); err != nil {
		t.Errorf("published package not resolvable: %v", err)
	}

	// Publishing twice is an ordering error: the lifecycle is done.
	var cfgErr *recipe.ConfigurationError
	if err := l.Publish(st); !errors.As(err, &cfgErr) {
		t.Errorf("second Publish = %v, want ConfigurationError", err)
	}
}

func TestOptionOverrides(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	cfg := testConfig(t)
	cfg.Options = map[string]bool{"shared": true}

	l := New(r, cfg)
	if err := l.Configure(); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if shared, _ := l.Options().Bool("shared"); !shared {
		t.Error("override not applied")
	}
	// shared=true removes fPIC during configure.
	if l.Options().Has("fPIC") {
		t.Error("fPIC present for a shared build")
	}
}

func TestUnknownOptionOverride(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	cfg := testConfig(t)
	cfg.Options = map[string]bool{"with_lasers": true}

	l := New(r, cfg)
	err := l.Configure()
	var cfgErr *recipe.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Configure = %v, want ConfigurationError", err)
	}
}

func TestWindowsDropsFPICOverride(t *testing.T) {
	var trace []string
	r := scriptedRecipe(&trace)
	cfg := testConfig(t)
	cfg.Settings.OS = "Windows"
	cfg.Options = map[string]bool{"fPIC": true}

	l := New(r, cfg)
	if err := l.Configure(); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if l.Options().Has("fPIC") {
		t.Error("fPIC present on Windows")
	}
}

func TestExportSources(t *testing.T) {
	r := recipe.New(recipe.Identity{Name: "demo", Version: "1.0.0"})
	r.OnExport(func(m *recipe.ExportManifest) {
		m.Add("CMakeLists.txt")
	})

	src := t.TempDir()
	dst := t.TempDir()

	err := ExportSources(r, src, dst)
	var cfgErr *recipe.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ExportSources with missing path = %v, want ConfigurationError", err)
	}
}
