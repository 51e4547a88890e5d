// Package main provides the aura command line entry point.
package main

import "github.com/miradorstack/aura/internal/cli"

func main() {
	cli.Execute()
}
