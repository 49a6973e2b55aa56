// Package recipes is the registry of recipes compiled into the kiln
// binary. Recipe packages register themselves from an init function
// and are pulled in with a blank import.
package recipes

import (
	"sort"
	"sync"

	"github.com/kilnpkg/kiln/recipe"
)

var (
	mu       sync.Mutex
	registry = map[string]func() *recipe.Recipe{}
)

// Register makes a recipe constructor available under its name.
// Registering the same name twice panics: it is a programming error in
// the recipe set.
func Register(name string, construct func() *recipe.Recipe) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("recipes: Register called twice for " + name)
	}
	registry[name] = construct
}

// Lookup returns a fresh recipe instance by name.
func Lookup(name string) (*recipe.Recipe, bool) {
	mu.Lock()
	construct, ok := registry[name]
	mu.Unlock()
	if !ok {
		return nil, false
	}
	return construct(), true
}

// Names returns the registered recipe names, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
