package main

import "github.com/riftline/riftline/cmd"

func main() {
	cmd.Execute()
}
