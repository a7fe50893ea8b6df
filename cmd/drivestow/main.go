package main

import "github.com/drivestow/drivestow/internal/cli"

func main() {
	cli.Execute()
}
