package cmake

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/kilnpkg/kiln/pkgs/buildsys"
	"github.com/kilnpkg/kiln/recipe"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps common CMake build steps with chainable configuration.
type CMake struct {
	SourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	Defines    map[string]defineValue
	env        map[string]string
	runner     buildsys.Runner
}

var _ buildsys.BuildSystem = (*CMake)(nil)

const toolchainFile = "toolchain.cmake"

// New creates a new CMake helper. Optional context supplies the
// source/build/package folders and any toolchain descriptor written by
// the generate stage.
func New(ctx *recipe.Context) *CMake {
	c := &CMake{
		Defines: map[string]defineValue{},
		env:     map[string]string{},
		runner:  buildsys.ExecRunner{},
	}
	if ctx != nil {
		c.SourceDir = ctx.SourceDir
		c.buildDir = ctx.BuildDir
		c.installDir = ctx.PackageDir
		if ctx.Settings != nil {
			c.buildType = ctx.Settings.BuildType
		}
		if ctx.GeneratorsDir != "" {
			tc := filepath.Join(ctx.GeneratorsDir, toolchainFile)
			if _, err := os.Stat(tc); err == nil {
				c.toolchain = tc
			}
		}
	}
	if c.buildDir == "" {
		buildDir, err := os.MkdirTemp("", "kiln-build-")
		if err != nil {
			buildDir = filepath.Join(c.SourceDir, "build")
		}
		c.buildDir = buildDir
	}
	return c
}

func (c *CMake) Source(dir string) {
	c.SourceDir = dir
}

func (c *CMake) InstallDir(dir string) {
	c.installDir = dir
}

func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

func (c *CMake) Define(key, value string) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	c.Defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	if value {
		c.Defines[key] = defineValue{value: "ON", typeName: "BOOL"}
		return c
	}
	c.Defines[key] = defineValue{value: "OFF", typeName: "BOOL"}
	return c
}

func (c *CMake) Env(key, value string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = value
	_ = os.Setenv(key, value)
}

// SetRunner replaces the command runner. Used by tests.
func (c *CMake) SetRunner(r buildsys.Runner) {
	c.runner = r
}

// Use configures the build environment to locate the resolved
// dependency's headers and libraries.
func (c *CMake) Use(dep recipe.ResolvedDep) {
	depDir := dep.Dir

	includeDir := filepath.Join(depDir, "include")
	libDir := filepath.Join(depDir, "lib")
	pkgconfigDir := filepath.Join(depDir, "lib", "pkgconfig")

	// PKG_CONFIG_PATH - pkg-config path (all platforms)
	if _, err := os.Stat(pkgconfigDir); err == nil {
		prependEnv("PKG_CONFIG_PATH", pkgconfigDir)
	}

	// CMAKE paths (all platforms)
	if _, err := os.Stat(depDir); err == nil {
		prependEnv("CMAKE_PREFIX_PATH", depDir)
	}
	if _, err := os.Stat(includeDir); err == nil {
		prependEnv("CMAKE_INCLUDE_PATH", includeDir)
	}
	if _, err := os.Stat(libDir); err == nil {
		prependEnv("CMAKE_LIBRARY_PATH", libDir)
	}

	// Platform-specific settings
	if runtime.GOOS == "windows" {
		// Windows MSVC environment variables
		if _, err := os.Stat(includeDir); err == nil {
			prependEnv("INCLUDE", includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			prependEnv("LIB", libDir)
		}
	} else {
		// Unix (Linux/macOS) - Autotools/GCC style flags
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

func (c *CMake) Configure(args ...string) error {
	buildDir := c.buildDir
	if buildDir == "" {
		buildDir = "build"
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.SourceDir, "-B", buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)

	return c.run("cmake", cmakeArgs)
}

func (c *CMake) Build(args ...string) error {
	buildDir := c.buildDir
	if buildDir == "" {
		buildDir = "build"
	}
	cmdArgs := []string{"--build", buildDir}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "--config", c.buildType)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.run("cmake", cmdArgs)
}

// Test runs ctest over the build tree. Failing tests report their
// output in full.
func (c *CMake) Test(args ...string) error {
	buildDir := c.buildDir
	if buildDir == "" {
		buildDir = "build"
	}
	cmdArgs := []string{"--test-dir", buildDir, "--output-on-failure"}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "-C", c.buildType)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.run("ctest", cmdArgs)
}

func (c *CMake) Install(args ...string) error {
	buildDir := c.buildDir
	if buildDir == "" {
		buildDir = "build"
	}
	cmdArgs := []string{"--install", buildDir}
	if c.installDir != "" {
		cmdArgs = append(cmdArgs, "--prefix", c.installDir)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.run("cmake", cmdArgs)
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

func (c *CMake) run(bin string, args []string) error {
	if err := c.runner.Run("", bin, args, c.env); err != nil {
		return &recipe.ExternalToolError{Tool: bin, Args: args, Err: err}
	}
	return nil
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
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
