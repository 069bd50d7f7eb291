package main

import (
	"rhythmfm/cmd"
)

func main() {
	cmd.Execute()
}
