package main

import "github.com/theopenlane/probity/cmd"

func main() {
	cmd.Execute()
}
