package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/urfave/cli"

	stkcfg "github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/util"
)

var initCommand = cli.Command{
	Name:  "init",
	Usage: "Initialize a staking pool home directory.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  homeFlag,
			Usage: "Path to where the home directory will be initialized",
			Value: stkcfg.DefaultStakingDir,
		},
		cli.BoolFlag{
			Name:     forceFlag,
			Usage:    "Override existing configuration",
			Required: false,
		},
	},
	Action: initHome,
}

func initHome(c *cli.Context) error {
	homePath, err := homePathFrom(c)
	if err != nil {
		return err
	}
	force := c.Bool(forceFlag)

	if util.FileExists(homePath) && !force {
		return fmt.Errorf("home path %s already exists", homePath)
	}

	for _, dir := range []string{homePath, stkcfg.LogDir(homePath), stkcfg.DataDir(homePath)} {
		if err := util.MakeDirectory(dir); err != nil {
			return err
		}
	}

	// the genesis of the block clock is fixed here, at init time
	defaultConfig := stkcfg.DefaultConfigWithHomePath(homePath)
	fileParser := flags.NewParser(&defaultConfig, flags.Default)

	return flags.NewIniParser(fileParser).WriteFile(stkcfg.ConfigFile(homePath), flags.IniIncludeComments|flags.IniIncludeDefaults)
}
