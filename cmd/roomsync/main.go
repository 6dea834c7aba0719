// Package main provides the entry point for the roomsync CLI tool.
package main

import (
	"github.com/roomsync/roomsync/cmd/roomsync/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
