// Package main is the entry point for the sfcc CLI.
package main

import "sfcc.dev/pkg/sfcc/cmd"

func main() {
	cmd.Execute()
}
