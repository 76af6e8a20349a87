package main

import "tech-dispatch/internal/cli"

func main() {
	cli.Execute()
}
