package main

import "github.com/pfrederiksen/rec-schedule/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
