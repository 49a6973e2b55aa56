package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilnpkg/kiln/internal/profile"
	"github.com/kilnpkg/kiln/recipe"
	"github.com/kilnpkg/kiln/recipes"
)

// loadProfile loads the named profile file, or the autodetected host
// profile when path is empty.
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

// applySettings applies -s key=value overrides onto a settings vector.
func applySettings(s *recipe.Settings, overrides []string) error {
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid setting %q: want key=value", kv)
		}
		switch key {
		case "os":
			s.OS = value
		case "arch":
			s.Arch = value
		case "compiler":
			s.Compiler = value
		case "compiler_version":
			s.CompilerVersion = value
		case "cppstd":
			s.Cppstd = value
		case "build_type":
			s.BuildType = value
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return nil
}

// applyOptions applies -o key=value overrides onto an option map.
func applyOptions(opts map[string]bool, overrides []string) (map[string]bool, error) {
	if opts == nil {
		opts = map[string]bool{}
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid option %q: want key=value", kv)
		}
		b, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("invalid option %q: %w", kv, err)
		}
		opts[key] = b
	}
	return opts, nil
}

// lookupRecipe finds a registered recipe or reports the known names.
func lookupRecipe(name string) (*recipe.Recipe, error) {
	rcp, ok := recipes.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown recipe %q, known recipes: %s",
			name, strings.Join(recipes.Names(), ", "))
	}
	return rcp, nil
}
