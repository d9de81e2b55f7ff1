package main

import "candedit/internal/cli"

func main() {
	cli.Execute()
}
