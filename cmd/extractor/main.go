// Package main is the entry point for the Agent Forge extraction service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	extractor "github.com/forge-io/agentforge/internal/extractor"
)

func main() {
	extractor.NewApp().Run()
}
