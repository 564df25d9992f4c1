package main

import "github.com/mcoot/shootout/internal/cli"

func main() {
	cli.Execute()
}
