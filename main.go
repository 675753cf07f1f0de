package main

import (
	"focustracks/cmd"
)

func main() {
	cmd.Execute()
}
