package ref

import (
	"fmt"
	"strings"
)

// Ref identifies a package by name and exact version, e.g. "fmt/9.1.0".
type Ref struct {
	Name    string
	Version string
}

// Parse parses a "name/version" reference. The version is an exact pin;
// no range syntax is accepted.
func Parse(s string) (Ref, error) {
	name, version, ok := strings.Cut(s, "/")
	if !ok || name == "" || version == "" {
		return Ref{}, fmt.Errorf("invalid package reference %q: want name/version", s)
	}
	return Ref{Name: name, Version: version}, nil
}

func (r Ref) String() string {
	return r.Name + "/" + r.Version
}
