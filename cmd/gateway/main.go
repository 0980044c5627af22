// Package main is the entry point for the Agent Forge gateway.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	gateway "github.com/forge-io/agentforge/internal/gateway"
)

func main() {
	gateway.NewApp().Run()
}
