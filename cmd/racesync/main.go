package main

import "github.com/mcoot/racesync/internal/cli"

func main() {
	cli.Execute()
}
