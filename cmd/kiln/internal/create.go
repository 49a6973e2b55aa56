package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/kilnpkg/kiln/internal/generate"
	"github.com/kilnpkg/kiln/internal/lifecycle"
	"github.com/kilnpkg/kiln/internal/resolve"
	"github.com/kilnpkg/kiln/internal/store"
	_ "github.com/kilnpkg/kiln/recipes/kacommon"
)

var (
	createProfile   string
	createSettings  []string
	createOptions   []string
	createSource    string
	createSkipTests bool
	createOrder     string
)

var createCmd = &cobra.Command{
	Use:   "create [recipe]",
	Short: "Build, test, package, and publish a recipe",
	Long: `Create exports the recipe's sources, drives the full lifecycle, and
publishes the resulting package to the local store.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createProfile, "profile", "p", "", "Profile file (default: host profile)")
	createCmd.Flags().StringArrayVarP(&createSettings, "setting", "s", nil, "Override a setting (key=value)")
	createCmd.Flags().StringArrayVarP(&createOptions, "option", "o", nil, "Override an option (key=value)")
	createCmd.Flags().StringVar(&createSource, "source", ".", "Directory containing the library sources")
	createCmd.Flags().BoolVar(&createSkipTests, "skip-tests", false, "Skip the test stage")
	createCmd.Flags().StringVar(&createOrder, "generate-order", "", "Descriptor generation order (deps-first|toolchain-first)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	rcp, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}

	prof, err := loadProfile(createProfile)
	if err != nil {
		return err
	}
	if err := applySettings(&prof.Settings, createSettings); err != nil {
		return err
	}
	if prof.Options, err = applyOptions(prof.Options, createOptions); err != nil {
		return err
	}
	if createSkipTests {
		prof.Conf.SkipTest = true
	}
	order, err := generate.ParseOrder(createOrder)
	if err != nil {
		return err
	}

	id := rcp.Identity()
	workDir := filepath.Join(xdg.CacheHome, "kiln", "work", id.Name, id.Version)
	if err := os.RemoveAll(workDir); err != nil {
		return err
	}
	exportDir := filepath.Join(workDir, "export")

	fmt.Printf("==> %s/%s: export\n", id.Name, id.Version)
	if err := lifecycle.ExportSources(rcp, createSource, exportDir); err != nil {
		return fmt.Errorf("export stage failed: %w", err)
	}

	st := store.Default()
	l := lifecycle.New(rcp, lifecycle.Config{
		Settings:  prof.Settings,
		Options:   prof.Options,
		Conf:      prof.Conf,
		Order:     order,
		Resolver:  resolve.NewStoreResolver(st),
		SourceDir: exportDir,
		WorkDir:   workDir,
	})

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
		{"package", l.Package},
		{"publish", func() error { return l.Publish(st) }},
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

	info := l.PackageInfo()
	fmt.Printf("published %s/%s (target %s, libs %v)\n", id.Name, id.Version, info.TargetName, info.Libs)
	return nil
}
