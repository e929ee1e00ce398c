// objatlas merges the materials of a Wavefront OBJ model into a single
// material backed by one packed texture atlas.
package main

import "github.com/Faultbox/objatlas/cmd/objatlas/commands"

func main() {
	commands.Execute()
}
