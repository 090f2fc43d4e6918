// Package main is the entry point for the Kouzina chat service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	chat "github.com/kouzina-io/kouzina/internal/chat"
)

func main() {
	chat.NewApp().Run()
}
