package main

import "github.com/jamescalam/autodocs/internal/cli"

func main() {
	cli.Execute()
}
