package main

import "grid-sync/cmd"

func main() {
	cmd.Execute()
}
