package internal

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "kiln builds and packages native libraries from recipes",
	Long: `kiln drives package recipes for native libraries through their
lifecycle: configure options, resolve requirements, export sources,
generate build-tool inputs, build, test, package, and publish to the
local store.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
