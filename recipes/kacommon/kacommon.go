// Package kacommon is the build recipe for ka_common, a C++ utility
// library. The recipe builds with CMake, depends on fmt at runtime,
// and uses gtest for its own tests only.
package kacommon

import (
	"github.com/kilnpkg/kiln/pkgs/buildsys/cmake"
	"github.com/kilnpkg/kiln/recipe"
	"github.com/kilnpkg/kiln/recipes"
)

func init() {
	recipes.Register("ka_common", New)
}

// New constructs the ka_common recipe.
func New() *recipe.Recipe {
	r := recipe.New(recipe.Identity{
		Name:        "ka_common",
		Version:     "0.1.0",
		PackageType: "library",
		License:     "MIT",
		Author:      "kononovarseniy@gmail.com",
		URL:         "https://github.com/kononovarseniy/common",
		Description: "Functions and types that are frequently used in my C++ projects",
	})

	r.OnConfigOptions(func(s *recipe.Settings, o *recipe.Options) {
		o.Declare("shared", false)
		o.Declare("fPIC", true)
		// No static/PIC distinction on Windows.
		if s.IsWindows() {
			o.RmSafe("fPIC")
		}
	})

	r.OnConfigure(func(s *recipe.Settings, o *recipe.Options) {
		// PIC is implied for shared artifacts.
		if shared, ok := o.Bool("shared"); ok && shared {
			o.RmSafe("fPIC")
		}
	})

	r.OnValidate(func(s *recipe.Settings) error {
		return recipe.CheckMinCppStd(s, "20")
	})

	r.OnRequire(func(d *recipe.Deps) error {
		if err := d.Require("fmt/9.1.0"); err != nil {
			return err
		}
		return d.TestRequire("gtest/1.17.0")
	})

	r.OnExport(func(m *recipe.ExportManifest) {
		m.Add("CMakeLists.txt")
		m.Add("cmake/*")
		m.Add("include/*")
		m.Add("src/*")
	})

	r.OnBuild(func(ctx *recipe.Context) error {
		c := cmake.New(ctx)
		for _, dep := range ctx.Deps {
			c.Use(dep)
		}
		if err := c.Configure(); err != nil {
			return err
		}
		return c.Build()
	})

	r.OnTest(func(ctx *recipe.Context) error {
		return cmake.New(ctx).Test()
	})

	r.OnPackage(func(ctx *recipe.Context) error {
		if err := cmake.New(ctx).Install(); err != nil {
			return err
		}
		// Consumers get the build-integration glue next to the
		// installed artifacts.
		return recipe.Copy("cmake/*", ctx.SourceDir, ctx.PackageDir)
	})

	r.OnPackageInfo(func(info *recipe.CppInfo) {
		info.BuildDirs = []string{"cmake"}
		info.TargetName = "ka::common"
		info.Libs = []string{"ka_common"}
	})

	return r
}
