package main

import (
	"os"

	"github.com/zinc-sig/pst/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
