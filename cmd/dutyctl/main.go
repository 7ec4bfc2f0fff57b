package main

import "github.com/mcoot/dutyledger/internal/cli"

func main() {
	cli.Execute()
}
