package main

import "github.com/snapdrop/cli/cmd"

func main() {
	cmd.Execute()
}
