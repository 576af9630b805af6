package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/ftpaccounts/internal/buildinfo"
	"github.com/dmitrijs2005/ftpaccounts/internal/cli"
	"github.com/dmitrijs2005/ftpaccounts/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	args := config.Positional(os.Args[1:])
	if len(args) > 0 && args[0] == "version" {
		buildinfo.PrintBuildData(os.Stdout)
		return 0
	}

	app, err := cli.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx, args); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
