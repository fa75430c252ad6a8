// Package main is the entry point for the astuto-sync CLI.
package main

import "github.com/gitmirror/astuto-sync/cmd/astuto-sync/commands"

func main() {
	commands.Execute()
}
