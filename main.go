package main

import "github.com/jfmyers9/plexlint/cmd"

func main() {
	cmd.Execute()
}
