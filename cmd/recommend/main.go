package main

import "recommend/internal/cli"

func main() {
	cli.Execute()
}
