package main

import (
	// Embedded zone data so Africa/Lagos resolves on minimal images.
	_ "time/tzdata"

	"github.com/tripline/server/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
