package main

import "github.com/secondbrain/backend/internal/interfaces/cli"

func main() {
	cli.Execute()
}
