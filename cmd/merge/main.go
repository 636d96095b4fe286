package main

import (
	"os"

	"github.com/rickgao/traffic-data/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewMergeCommand()))
}
