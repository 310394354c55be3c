// agewitness issues and verifies account age witnesses.
package main

import (
	"fmt"
	"os"

	"github.com/spacemeshos/go-agewitness/cmd"
	"github.com/spacemeshos/go-agewitness/node"
)

var (
	version string
	commit  string
	branch  string
)

func main() { // run the app
	cmd.Version = version
	cmd.Commit = commit
	cmd.Branch = branch
	if err := node.GetCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
