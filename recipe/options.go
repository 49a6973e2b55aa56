package recipe

import "sort"

// Options holds the declared build options of a recipe and their
// current values. An option that has been removed from the domain is
// absent, which is distinct from being set to false: absent means "not
// applicable for this target".
type Options struct {
	values  map[string]bool
	removed map[string]bool
	frozen  bool
}

func NewOptions() *Options {
	return &Options{values: map[string]bool{}, removed: map[string]bool{}}
}

// Declare adds an option to the domain with a default value. Declaring
// an already-present option keeps its current value, so running the
// configuration callbacks over an already-narrowed set is a no-op.
func (o *Options) Declare(name string, def bool) {
	if _, ok := o.values[name]; ok {
		return
	}
	o.values[name] = def
}

// Set overrides the value of a declared option. Setting an option that
// was removed from the domain is silently dropped: the narrowing
// decision wins over the supplied value. Never-declared options and
// writes after Freeze are configuration errors.
func (o *Options) Set(name string, value bool) error {
	if o.frozen {
		return Configf("option %q: options are frozen after configuration", name)
	}
	if _, ok := o.values[name]; !ok {
		if o.removed[name] {
			return nil
		}
		return Configf("unknown option %q", name)
	}
	o.values[name] = value
	return nil
}

// Bool returns the current value of an option and whether it is
// present in the domain.
func (o *Options) Bool(name string) (value, ok bool) {
	value, ok = o.values[name]
	return
}

// Has reports whether an option is present in the domain.
func (o *Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// RmSafe removes an option from the domain. Removing an already-absent
// option is a no-op.
func (o *Options) RmSafe(name string) {
	if _, ok := o.values[name]; ok {
		o.removed[name] = true
	}
	delete(o.values, name)
}

// Freeze marks the option set immutable for the remainder of the
// lifecycle.
func (o *Options) Freeze() {
	o.frozen = true
}

// Names returns the names of all present options, sorted.
func (o *Options) Names() []string {
	names := make([]string, 0, len(o.values))
	for name := range o.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the present options and their values.
func (o *Options) Map() map[string]bool {
	m := make(map[string]bool, len(o.values))
	for name, value := range o.values {
		m[name] = value
	}
	return m
}
