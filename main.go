package main

import (
	"os"

	"github.com/scan-io-git/egressguard/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
