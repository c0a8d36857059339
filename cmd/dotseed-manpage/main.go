package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/dotseed/cmd/dotseed"
	"github.com/arthur-debert/dotseed/internal/version"
)

func main() {
	rootCmd := dotseed.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DOTSEED",
		Section: "1",
		Source:  "dotseed " + version.Version,
		Manual:  "dotseed manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
