package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/odyssey-erp/formcsrf/cmd/csrftool/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, cli.ErrInvalidPair) {
			fmt.Fprintln(os.Stderr, "csrftool:", err)
		} else {
			fmt.Fprintln(os.Stderr, "invalid")
		}
		os.Exit(1)
	}
}
