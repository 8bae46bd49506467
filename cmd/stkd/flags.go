package main

import (
	"github.com/urfave/cli"

	"github.com/babylonchain/staking-ledger/util"
)

const (
	homeFlag      = "home"
	forceFlag     = "force"
	accountIDFlag = "id"
)

func homePathFrom(c *cli.Context) (string, error) {
	return util.ExpandHomePath(c.String(homeFlag))
}
