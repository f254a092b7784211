package main

import (
	"fixture-matching/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
