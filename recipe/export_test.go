package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestExportManifestCopyTo(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "CMakeLists.txt"), "project(demo)\n")
	writeFile(t, filepath.Join(src, "cmake", "helpers.cmake"), "# helpers\n")
	writeFile(t, filepath.Join(src, "include", "demo", "demo.hpp"), "#pragma once\n")

	var m ExportManifest
	m.Add("CMakeLists.txt")
	m.Add("cmake/*")
	m.Add("include/*")

	if err := m.CopyTo(src, dst); err != nil {
		t.Fatalf("CopyTo failed: %v", err)
	}

	for _, rel := range []string{
		"CMakeLists.txt",
		filepath.Join("cmake", "helpers.cmake"),
		filepath.Join("include", "demo", "demo.hpp"),
	} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Errorf("missing exported file %s: %v", rel, err)
		}
	}

	// Copying identical content again is a no-op.
	if err := m.CopyTo(src, dst); err != nil {
		t.Fatalf("second CopyTo failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "CMakeLists.txt"))
	if err != nil || string(data) != "project(demo)\n" {
		t.Errorf("re-copy corrupted content: %q, %v", data, err)
	}
}

func TestExportManifestMissingPath(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	var m ExportManifest
	m.Add("src/*")

	err := m.CopyTo(src, dst)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("CopyTo = %v, want ConfigurationError", err)
	}

	var single ExportManifest
	single.Add("CMakeLists.txt")
	if err := single.CopyTo(src, dst); !errors.As(err, &cfgErr) {
		t.Errorf("CopyTo missing file = %v, want ConfigurationError", err)
	}
}
