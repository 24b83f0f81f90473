package main

import (
	"fmt"
	"os"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
