package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[stkd] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "stkd"
	app.Usage = "Staking Pool Daemon (stkd)."
	app.Commands = append(app.Commands, startCommand, initCommand, poolCommand, accountCommand)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
