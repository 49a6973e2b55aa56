package autotools

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kilnpkg/kiln/recipe"
)

type call struct {
	dir  string
	bin  string
	args []string
}

type fakeRunner struct {
	calls   []call
	failBin string
}

func (f *fakeRunner) Run(dir, bin string, args []string, env map[string]string) error {
	f.calls = append(f.calls, call{dir: dir, bin: bin, args: args})
	if f.failBin == bin {
		return fmt.Errorf("%s: exit status 2", bin)
	}
	return nil
}

func testContext(t *testing.T) *recipe.Context {
	t.Helper()
	root := t.TempDir()
	return &recipe.Context{
		SourceDir:  filepath.Join(root, "src"),
		BuildDir:   filepath.Join(root, "build"),
		PackageDir: filepath.Join(root, "pkg"),
	}
}

func TestConfigure(t *testing.T) {
	ctx := testContext(t)
	a := New(ctx)
	r := &fakeRunner{}
	a.SetRunner(r)

	if err := a.Configure("--enable-static"); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	c := r.calls[0]
	if c.bin != filepath.Join(ctx.SourceDir, "configure") {
		t.Errorf("bin = %q, want configure script in source dir", c.bin)
	}
	if !slices.Contains(c.args, "--prefix="+ctx.PackageDir) {
		t.Errorf("args missing prefix: %v", c.args)
	}
	if !slices.Contains(c.args, "--enable-static") {
		t.Errorf("args missing extra flag: %v", c.args)
	}
	if c.dir != ctx.BuildDir {
		t.Errorf("workdir = %q, want build dir", c.dir)
	}
}

func TestBuildTestInstall(t *testing.T) {
	a := New(testContext(t))
	r := &fakeRunner{}
	a.SetRunner(r)

	if err := a.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := a.Test(); err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if err := a.Install(); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if r.calls[0].bin != "make" || len(r.calls[0].args) != 0 {
		t.Errorf("unexpected build call: %+v", r.calls[0])
	}
	if !slices.Equal(r.calls[1].args, []string{"check", "VERBOSE=1"}) {
		t.Errorf("unexpected test call: %+v", r.calls[1])
	}
	if !slices.Equal(r.calls[2].args, []string{"install"}) {
		t.Errorf("unexpected install call: %+v", r.calls[2])
	}
}

func TestToolFailure(t *testing.T) {
	a := New(testContext(t))
	a.SetRunner(&fakeRunner{failBin: "make"})

	err := a.Build()
	var toolErr *recipe.ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Build = %v, want ExternalToolError", err)
	}
}
