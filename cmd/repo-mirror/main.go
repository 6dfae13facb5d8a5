package main

import "repo-mirror/internal/cli"

func main() {
	cli.Execute()
}
