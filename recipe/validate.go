package recipe

import (
	"strings"

	"golang.org/x/mod/semver"
)

// CheckMinCppStd validates that the build context provides at least
// the given C++ standard (e.g. "20"). Gnu dialects ("gnu20") satisfy
// the plain standard of the same year. A missing or too-old standard
// is a ConfigurationError, raised before any build stage runs.
func CheckMinCppStd(s *Settings, min string) error {
	if s.Cppstd == "" {
		return Configf("compiler.cppstd is not set, need at least C++%s", min)
	}
	std := strings.TrimPrefix(s.Cppstd, "gnu")
	if std == "" {
		return Configf("invalid compiler.cppstd %q, need at least C++%s", s.Cppstd, min)
	}
	if cppstdCompare(std, min) < 0 {
		return Configf("C++%s is required, current standard is C++%s", min, s.Cppstd)
	}
	return nil
}

// cppstdCompare orders C++ standard years. "98" and "03" predate the
// two-digit-year scheme wrapping, so they sort below everything else.
func cppstdCompare(a, b string) int {
	rank := func(std string) int {
		switch std {
		case "98":
			return -2
		case "03":
			return -1
		}
		return 0
	}
	if ra, rb := rank(a), rank(b); ra != 0 || rb != 0 {
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return +1
		default:
			return 0
		}
	}
	return semver.Compare("v"+a, "v"+b)
}
