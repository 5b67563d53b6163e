package main

import "github.com/Alturino/medkit/cmd"

func main() {
	cmd.Start()
}
