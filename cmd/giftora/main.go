// Command giftora runs the template API server and the template tooling.
package main

import (
	"fmt"
	"os"

	"giftora/internal/cli"
)

var version = "dev"

func main() {
	cmd := cli.NewRootCmd(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "giftora:", err)
		os.Exit(1)
	}
}
