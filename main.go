package main

import "github.com/pylens/pylens/cmd"

func main() {
	cmd.Execute()
}
