package main

import (
	"os"

	"wtmux/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
