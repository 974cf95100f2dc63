package main

import "github.com/buildwise/buildwise/cmd"

func main() {
	cmd.Execute()
}
