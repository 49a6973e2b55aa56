package internal

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilnpkg/kiln/recipe"
	_ "github.com/kilnpkg/kiln/recipes/kacommon"
)

var infoCmd = &cobra.Command{
	Use:   "info [recipe]",
	Short: "Print a recipe's metadata as JSON",
	Long: `Info prints the recipe's identity, runtime requirements, and the
consumer metadata it publishes. Test-only requirements are omitted, as
consumers never see them.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

type recipeInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	PackageType string         `json:"package_type,omitempty"`
	License     string         `json:"license,omitempty"`
	Author      string         `json:"author,omitempty"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Requires    []string       `json:"requires"`
	CppInfo     recipe.CppInfo `json:"cpp_info"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	rcp, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}

	var deps recipe.Deps
	if err := rcp.Require(&deps); err != nil {
		return err
	}
	requires := []string{}
	for _, req := range deps.Runtime() {
		requires = append(requires, req.Ref.String())
	}

	var cpp recipe.CppInfo
	rcp.PackageInfo(&cpp)

	id := rcp.Identity()
	out := recipeInfo{
		Name:        id.Name,
		Version:     id.Version,
		PackageType: id.PackageType,
		License:     id.License,
		Author:      id.Author,
		URL:         id.URL,
		Description: id.Description,
		Requires:    requires,
		CppInfo:     cpp,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
