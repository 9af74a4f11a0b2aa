package main

import (
	"os"

	"github.com/raveheart1/hed/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
