package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilnpkg/kiln/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages in the local store",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	refs, err := store.Default().Packages()
	if err != nil {
		return err
	}
	for _, r := range refs {
		fmt.Println(r)
	}
	return nil
}
