package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilnpkg/kiln/recipe"
)

// Order controls whether dependency descriptors are written before or
// after the toolchain descriptor. The reference behavior is
// DepsFirst; whether the toolchain genuinely needs dependency
// information first is unconfirmed, so both orders are supported.
type Order int

const (
	DepsFirst Order = iota
	ToolchainFirst
)

// ParseOrder parses a generation-order flag value.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "deps-first":
		return DepsFirst, nil
	case "toolchain-first":
		return ToolchainFirst, nil
	}
	return 0, fmt.Errorf("invalid generation order %q: want deps-first or toolchain-first", s)
}

const (
	depsFile      = "deps.cmake"
	toolchainFile = "toolchain.cmake"
	header        = "# Generated by kiln. Do not edit.\n"
)

// Generator writes the build-tool input files for a finalized option
// set and a resolved requirement set into Dir. The files are read by
// the external build tool; their exact content is an implementation
// detail of that contract.
type Generator struct {
	Dir   string
	Order Order
}

// Generate writes the descriptor files and returns their paths in
// write order.
func (g *Generator) Generate(s *recipe.Settings, o *recipe.Options, deps []recipe.ResolvedDep) ([]string, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	steps := []func() (string, error){
		func() (string, error) { return g.writeDeps(deps) },
		func() (string, error) { return g.writeToolchain(s, o) },
	}
	if g.Order == ToolchainFirst {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, step := range steps {
		path, err := step()
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// writeDeps emits the dependency descriptor: prefix-path entries and
// per-dependency roots so the build tool can locate resolved packages
// and tell header-only dependencies from linked ones.
func (g *Generator) writeDeps(deps []recipe.ResolvedDep) (string, error) {
	var b strings.Builder
	b.WriteString(header)
	for _, dep := range deps {
		fmt.Fprintf(&b, "list(PREPEND CMAKE_PREFIX_PATH %q)\n", dep.Dir)
	}
	for _, dep := range deps {
		name := cmakeName(dep.Ref.Name)
		fmt.Fprintf(&b, "set(%s_ROOT %q)\n", name, dep.Dir)
		if dep.HeaderOnly {
			fmt.Fprintf(&b, "set(%s_HEADER_ONLY TRUE)\n", name)
		}
	}
	path := filepath.Join(g.Dir, depsFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// writeToolchain emits the toolchain descriptor capturing the settings
// vector and the finalized options.
func (g *Generator) writeToolchain(s *recipe.Settings, o *recipe.Options) (string, error) {
	var b strings.Builder
	b.WriteString(header)
	if s.BuildType != "" {
		fmt.Fprintf(&b, "set(CMAKE_BUILD_TYPE %q)\n", s.BuildType)
	}
	if std, ok := strings.CutPrefix(s.Cppstd, "gnu"); ok {
		fmt.Fprintf(&b, "set(CMAKE_CXX_STANDARD %s)\n", std)
		b.WriteString("set(CMAKE_CXX_EXTENSIONS ON)\n")
	} else if s.Cppstd != "" {
		fmt.Fprintf(&b, "set(CMAKE_CXX_STANDARD %s)\n", s.Cppstd)
		b.WriteString("set(CMAKE_CXX_EXTENSIONS OFF)\n")
	}
	if s.Cppstd != "" {
		b.WriteString("set(CMAKE_CXX_STANDARD_REQUIRED ON)\n")
	}
	if shared, ok := o.Bool("shared"); ok {
		fmt.Fprintf(&b, "set(BUILD_SHARED_LIBS %s)\n", onOff(shared))
	}
	// fPIC may be absent from the domain entirely; only a present
	// value is captured.
	if fpic, ok := o.Bool("fPIC"); ok {
		fmt.Fprintf(&b, "set(CMAKE_POSITION_INDEPENDENT_CODE %s)\n", onOff(fpic))
	}
	path := filepath.Join(g.Dir, toolchainFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

// cmakeName uppercases a package name the way find_package variables
// are spelled.
func cmakeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
	return mapped
}
