package recipe

import (
	"errors"
	"testing"
)

func TestDeps(t *testing.T) {
	var d Deps
	if err := d.Require("fmt/9.1.0"); err != nil {
		t.Fatalf("Require failed: %v", err)
	}
	if err := d.TestRequire("gtest/1.17.0"); err != nil {
		t.Fatalf("TestRequire failed: %v", err)
	}

	reqs := d.Requirements()
	if len(reqs) != 2 {
		t.Fatalf("Requirements() returned %d entries, want 2", len(reqs))
	}
	if reqs[0].Ref.Name != "fmt" || reqs[0].Role != RoleRuntime {
		t.Errorf("unexpected first requirement: %+v", reqs[0])
	}
	if reqs[1].Ref.Name != "gtest" || reqs[1].Role != RoleBuildTest {
		t.Errorf("unexpected second requirement: %+v", reqs[1])
	}

	runtime := d.Runtime()
	if len(runtime) != 1 || runtime[0].Ref.Name != "fmt" {
		t.Errorf("Runtime() = %+v, want only fmt", runtime)
	}
}

func TestDepsInvalidSpec(t *testing.T) {
	var d Deps
	err := d.Require("fmt")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Require(fmt) = %v, want ConfigurationError", err)
	}
}

func TestRoleString(t *testing.T) {
	if RoleRuntime.String() != "runtime" || RoleBuildTest.String() != "build-test" {
		t.Error("unexpected Role string values")
	}
}
