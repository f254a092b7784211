package main

import "fixture-matching/cmd/email-ingest/cmd"

func main() {
	cmd.Execute()
}
