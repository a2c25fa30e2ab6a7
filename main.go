package main

import (
	_ "time/tzdata"

	"github.com/killallgit/r2get/cmd"
)

func main() {
	cmd.Execute()
}
