package profile

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/kilnpkg/kiln/recipe"
)

// Profile bundles the build-context inputs the driving process hands
// to a lifecycle: the settings vector, option overrides, and behavior
// toggles.
//
// Example:
//
//	settings:
//	  os: Linux
//	  arch: x86_64
//	  compiler: gcc
//	  cppstd: "20"
//	  build_type: Release
//	options:
//	  shared: false
//	conf:
//	  skip_test: false
type Profile struct {
	Settings recipe.Settings `yaml:"settings"`
	Options  map[string]bool `yaml:"options"`
	Conf     recipe.Conf     `yaml:"conf"`
}

// Load reads a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// Default returns a profile detected from the host platform.
func Default() *Profile {
	p := &Profile{
		Settings: recipe.Settings{
			OS:        detectOS(),
			Arch:      detectArch(),
			Compiler:  detectCompiler(),
			Cppstd:    "20",
			BuildType: "Release",
		},
		Options: map[string]bool{},
	}
	return p
}

func detectOS() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "Macos"
	case "linux":
		return "Linux"
	}
	return runtime.GOOS
}

func detectArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "armv8"
	}
	return runtime.GOARCH
}

func detectCompiler() string {
	switch runtime.GOOS {
	case "windows":
		return "msvc"
	case "darwin":
		return "apple-clang"
	}
	return "gcc"
}
