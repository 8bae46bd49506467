package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	stkcfg "github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	stksrv "github.com/babylonchain/staking-ledger/staking/service"
)

// The query commands open the database directly, so the daemon must not
// be running against the same home directory.

var poolCommand = cli.Command{
	Name:  "pool",
	Usage: "Show the pool totals and the pause state.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  homeFlag,
			Usage: "The path to the staking pool home directory",
			Value: stkcfg.DefaultStakingDir,
		},
	},
	Action: showPool,
}

var accountCommand = cli.Command{
	Name:      "account",
	ShortName: "acc",
	Usage:     "Show an account of the pool together with its owed reward.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:     accountIDFlag,
			Usage:    "The id of the account",
			Required: true,
		},
		cli.StringFlag{
			Name:  homeFlag,
			Usage: "The path to the staking pool home directory",
			Value: stkcfg.DefaultStakingDir,
		},
	},
	Action: showAccount,
}

func showPool(ctx *cli.Context) error {
	return withLedger(ctx, func(l *ledger.Ledger) error {
		info, err := l.GetPool()
		if err != nil {
			return err
		}
		printRespJSON(stksrv.NewPoolResponse(info))
		return nil
	})
}

func showAccount(ctx *cli.Context) error {
	return withLedger(ctx, func(l *ledger.Ledger) error {
		info, err := l.GetAccount(ctx.String(accountIDFlag))
		if err != nil {
			return err
		}
		printRespJSON(stksrv.NewAccountResponse(info))
		return nil
	})
}

func withLedger(ctx *cli.Context, f func(l *ledger.Ledger) error) error {
	homePath, err := homePathFrom(ctx)
	if err != nil {
		return err
	}

	cfg, err := stkcfg.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	l, closeDB, err := openLedger(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer closeDB()

	return f(l)
}

func printRespJSON(resp interface{}) {
	jsonBytes, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Printf("%s\n", jsonBytes)
}
