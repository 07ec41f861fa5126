package main

import "github.com/debugmate-ai/debugmate/internal/cli"

func main() {
	cli.Execute()
}
