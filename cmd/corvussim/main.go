package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvuschain/corvus-sim-go/cmd/corvussim/commands"
)

// corvussim is the main entry point into the simulator. Subcommands write
// the default configuration and run a node serving the REST facade.
var rootCmd = &cobra.Command{
	Use:   "corvussim",
	Short: "Corvussim is a chain simulator for staking and delegation tests",
}

func addCommands() {
	rootCmd.AddCommand(commands.InitCmd())
	rootCmd.AddCommand(commands.StartCmd())
}

func main() {
	addCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
