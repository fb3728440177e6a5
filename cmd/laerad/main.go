package main

import (
	"os"

	"laerad/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
