package main

import "memoriakit/cmd/memoriakit-cli/cmd"

func main() {
	cmd.Execute()
}
