package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilnpkg/kiln/internal/generate"
	"github.com/kilnpkg/kiln/internal/lifecycle"
	"github.com/kilnpkg/kiln/internal/resolve"
	"github.com/kilnpkg/kiln/internal/store"
	_ "github.com/kilnpkg/kiln/recipes/kacommon"
)

var (
	buildProfile   string
	buildSettings  []string
	buildOptions   []string
	buildSource    string
	buildWork      string
	buildSkipTests bool
	buildOrder     string
)

var buildCmd = &cobra.Command{
	Use:   "build [recipe]",
	Short: "Build and test a recipe in place",
	Long: `Build runs the lifecycle against the sources in place, without
exporting them or publishing the package: configure, resolve, generate,
build, and test.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildProfile, "profile", "p", "", "Profile file (default: host profile)")
	buildCmd.Flags().StringArrayVarP(&buildSettings, "setting", "s", nil, "Override a setting (key=value)")
	buildCmd.Flags().StringArrayVarP(&buildOptions, "option", "o", nil, "Override an option (key=value)")
	buildCmd.Flags().StringVar(&buildSource, "source", ".", "Directory containing the library sources")
	buildCmd.Flags().StringVar(&buildWork, "work", "", "Work directory (default: <source>/.kiln)")
	buildCmd.Flags().BoolVar(&buildSkipTests, "skip-tests", false, "Skip the test stage")
	buildCmd.Flags().StringVar(&buildOrder, "generate-order", "", "Descriptor generation order (deps-first|toolchain-first)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	rcp, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}

	prof, err := loadProfile(buildProfile)
	if err != nil {
		return err
	}
	if err := applySettings(&prof.Settings, buildSettings); err != nil {
		return err
	}
	if prof.Options, err = applyOptions(prof.Options, buildOptions); err != nil {
		return err
	}
	if buildSkipTests {
		prof.Conf.SkipTest = true
	}
	order, err := generate.ParseOrder(buildOrder)
	if err != nil {
		return err
	}

	workDir := buildWork
	if workDir == "" {
		workDir = filepath.Join(buildSource, ".kiln")
	}

	l := lifecycle.New(rcp, lifecycle.Config{
		Settings:  prof.Settings,
		Options:   prof.Options,
		Conf:      prof.Conf,
		Order:     order,
		Resolver:  resolve.NewStoreResolver(store.Default()),
		SourceDir: buildSource,
		WorkDir:   workDir,
	})

	id := rcp.Identity()
	ctx := context.Background()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"configure", l.Configure},
		{"resolve", func() error { return l.Resolve(ctx) }},
		{"generate", l.Generate},
		{"build", l.Build},
		{"test", l.Test},
	}
	for _, step := range steps {
		fmt.Printf("==> %s/%s: %s\n", id.Name, id.Version, step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s stage failed: %w", step.name, err)
		}
	}
	if l.TestsSkipped() {
		fmt.Println("tests skipped")
	}
	fmt.Printf("built %s/%s in %s\n", id.Name, id.Version, l.BuildDir())
	return nil
}
