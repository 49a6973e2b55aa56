package internal

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/kilnpkg/kiln/internal/lifecycle"
	_ "github.com/kilnpkg/kiln/recipes/kacommon"
)

var (
	exportSource string
	exportDest   string
)

var exportCmd = &cobra.Command{
	Use:   "export [recipe]",
	Short: "Export a recipe's sources to a snapshot directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSource, "source", ".", "Directory containing the library sources")
	exportCmd.Flags().StringVar(&exportDest, "dest", "", "Destination directory (default: work dir export snapshot)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rcp, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}

	dest := exportDest
	if dest == "" {
		id := rcp.Identity()
		dest = filepath.Join(xdg.CacheHome, "kiln", "work", id.Name, id.Version, "export")
	}
	if err := lifecycle.ExportSources(rcp, exportSource, dest); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", dest)
	return nil
}
