package main

import "github.com/kilnpkg/kiln/cmd/kiln/internal"

func main() {
	internal.Execute()
}
