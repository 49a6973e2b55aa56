package autotools

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kilnpkg/kiln/pkgs/buildsys"
	"github.com/kilnpkg/kiln/recipe"
)

// AutoTools wraps common Autotools build steps with chainable configuration.
type AutoTools struct {
	SourceDir  string
	buildDir   string
	installDir string
	env        map[string]string
	runner     buildsys.Runner
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New creates a new AutoTools helper. Optional context supplies the
// source/build/package folders.
func New(ctx *recipe.Context) *AutoTools {
	a := &AutoTools{
		env:    map[string]string{},
		runner: buildsys.ExecRunner{},
	}
	if ctx != nil {
		a.SourceDir = ctx.SourceDir
		a.buildDir = ctx.BuildDir
		a.installDir = ctx.PackageDir
	}
	if a.buildDir == "" {
		buildDir, err := os.MkdirTemp("", "kiln-build-")
		if err != nil {
			buildDir = filepath.Join(a.SourceDir, "build")
		}
		a.buildDir = buildDir
	}
	return a
}

func (a *AutoTools) Source(dir string) {
	a.SourceDir = dir
}

func (a *AutoTools) InstallDir(dir string) {
	a.installDir = dir
}

func (a *AutoTools) Env(key, value string) {
	if a.env == nil {
		a.env = map[string]string{}
	}
	a.env[key] = value
	_ = os.Setenv(key, value)
}

// SetRunner replaces the command runner. Used by tests.
func (a *AutoTools) SetRunner(r buildsys.Runner) {
	a.runner = r
}

// Use configures the build environment to locate the resolved
// dependency's headers and libraries.
func (a *AutoTools) Use(dep recipe.ResolvedDep) {
	depDir := dep.Dir

	includeDir := filepath.Join(depDir, "include")
	libDir := filepath.Join(depDir, "lib")
	pkgconfigDir := filepath.Join(depDir, "lib", "pkgconfig")

	if _, err := os.Stat(pkgconfigDir); err == nil {
		prependEnv("PKG_CONFIG_PATH", pkgconfigDir)
	}

	if runtime.GOOS == "windows" {
		if _, err := os.Stat(includeDir); err == nil {
			prependEnv("INCLUDE", includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			prependEnv("LIB", libDir)
		}
	} else {
		if _, err := os.Stat(includeDir); err == nil {
			appendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if !dep.HeaderOnly {
			if _, err := os.Stat(libDir); err == nil {
				appendFlag("LDFLAGS", "-L"+libDir)
			}
		}
	}
}

// Configure runs ./configure with standard flags.
func (a *AutoTools) Configure(args ...string) error {
	buildDir := a.buildDir
	if buildDir == "" {
		buildDir = "."
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}

	exe := "./configure"
	if buildDir != "." {
		exe = filepath.Join(a.SourceDir, "configure")
	}

	configArgs := []string{}
	if a.installDir != "" {
		configArgs = append(configArgs, "--prefix="+a.installDir)
	}
	configArgs = append(configArgs, args...)

	return a.run(buildDir, exe, configArgs)
}

// Build runs make (or provided args) in the build directory.
func (a *AutoTools) Build(args ...string) error {
	buildDir := a.buildDir
	if buildDir == "" {
		buildDir = "."
	}
	cmdArgs := []string{"make"}
	if len(args) > 0 {
		cmdArgs = args
	}
	return a.run(buildDir, cmdArgs[0], cmdArgs[1:])
}

// Test runs make check (or provided args) in the build directory.
// VERBOSE=1 makes failing tests report their output in full.
func (a *AutoTools) Test(args ...string) error {
	buildDir := a.buildDir
	if buildDir == "" {
		buildDir = "."
	}
	cmdArgs := []string{"make", "check", "VERBOSE=1"}
	if len(args) > 0 {
		cmdArgs = args
	}
	return a.run(buildDir, cmdArgs[0], cmdArgs[1:])
}

// Install runs make install (or provided args) in the build directory.
func (a *AutoTools) Install(args ...string) error {
	buildDir := a.buildDir
	if buildDir == "" {
		buildDir = "."
	}
	cmdArgs := []string{"make", "install"}
	if len(args) > 0 {
		cmdArgs = args
	}
	return a.run(buildDir, cmdArgs[0], cmdArgs[1:])
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return a.installDir
	}
	return a.buildDir
}

func (a *AutoTools) run(dir, bin string, args []string) error {
	if err := a.runner.Run(dir, bin, args, a.env); err != nil {
		return &recipe.ExternalToolError{Tool: bin, Args: args, Err: err}
	}
	return nil
}

// prependEnv prepends a value to an environment variable using the appropriate separator.
func prependEnv(key, value string) {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	current := os.Getenv(key)
	if current == "" {
		os.Setenv(key, value)
	} else {
		os.Setenv(key, value+sep+current)
	}
}

// appendFlag appends a flag to an environment variable (space-separated).
func appendFlag(key, flag string) {
	current := os.Getenv(key)
	if current == "" {
		os.Setenv(key, flag)
	} else {
		os.Setenv(key, strings.TrimSpace(current+" "+flag))
	}
}
