package main

import "github.com/mirrorcli/mirror/cmd"

func main() {
	cmd.Execute()
}
