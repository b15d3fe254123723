package main

import (
	"fmt"

	"github.com/zeu5/selfplay-rl/commands"
)

// main entry point to training, play and merge commands
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
