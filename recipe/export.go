package recipe

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExportManifest is the set of path patterns that must travel with the
// recipe so it can be built outside its original working tree. A
// pattern is either a single relative path ("CMakeLists.txt") or a
// directory subtree ("cmake/*").
type ExportManifest struct {
	patterns []string
}

// Add appends a pattern to the manifest.
func (m *ExportManifest) Add(pattern string) {
	m.patterns = append(m.patterns, pattern)
}

// Patterns returns the declared patterns in declaration order.
func (m *ExportManifest) Patterns() []string {
	return slices.Clone(m.patterns)
}

// CopyTo copies every declared pattern from srcRoot into dstRoot,
// preserving relative paths. Copying identical content again is a
// no-op as far as the destination tree is concerned. A declared
// pattern whose source path does not exist means the recipe itself is
// malformed, which is a ConfigurationError.
func (m *ExportManifest) CopyTo(srcRoot, dstRoot string) error {
	for _, pattern := range m.patterns {
		if err := Copy(pattern, srcRoot, dstRoot); err != nil {
			return err
		}
	}
	return nil
}

// Copy copies one pattern from srcRoot into dstRoot. It is exported so
// package callbacks can reuse it to ship auxiliary files, such as
// build-integration glue copied next to installed artifacts.
func Copy(pattern, srcRoot, dstRoot string) error {
	if dir, ok := strings.CutSuffix(pattern, "/*"); ok {
		return copyTree(filepath.Join(srcRoot, dir), filepath.Join(dstRoot, dir), pattern)
	}
	src := filepath.Join(srcRoot, pattern)
	info, err := os.Stat(src)
	if err != nil {
		return Configf("export path %q does not exist under %s", pattern, srcRoot)
	}
	if info.IsDir() {
		return copyTree(src, filepath.Join(dstRoot, pattern), pattern)
	}
	return copyFile(src, filepath.Join(dstRoot, pattern), info.Mode())
}

func copyTree(srcDir, dstDir, pattern string) error {
	if _, err := os.Stat(srcDir); err != nil {
		return Configf("export path %q does not exist under %s", pattern, filepath.Dir(srcDir))
	}
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, dst, info.Mode())
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
