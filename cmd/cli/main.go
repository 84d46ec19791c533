package main

import "catsync/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
