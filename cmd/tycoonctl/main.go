package main

import "github.com/mcoot/tycoon-backend/internal/cli"

func main() {
	cli.Execute()
}
