package buildsys

import (
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/kilnpkg/kiln/recipe"
)

// BuildSystem captures shared capabilities of build helpers (CMake,
// Autotools, etc). It keeps the common lifecycle and dependency/env
// setup; implementations add their own extras.
type BuildSystem interface {
	// Use injects a resolved dependency into the build environment.
	Use(dep recipe.ResolvedDep)

	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle. Each verb either succeeds or returns a
	// *recipe.ExternalToolError; none is retried.
	Configure(args ...string) error
	Build(args ...string) error
	Test(args ...string) error
	Install(args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// Runner executes one external tool invocation. The default runner
// shells out; tests substitute a recording fake.
type Runner interface {
	Run(dir, bin string, args []string, env map[string]string) error
}

// ExecRunner runs tools as child processes with inherited stdio.
type ExecRunner struct{}

func (ExecRunner) Run(dir, bin string, args []string, env map[string]string) error {
	cmd := exec.Command(bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), env)
	}
	return cmd.Run()
}

// MergeEnv overlays override onto a base environment, returning a
// sorted KEY=VALUE list.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
