// The main package for the portrait-quiz executable.
package main

import (
	"github.com/JakeFAU/portrait-quiz/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
