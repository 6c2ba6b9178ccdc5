package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/safety"
	"github.com/trezcool/studio/core/tier"
	"github.com/trezcool/studio/storage/database"
	"github.com/trezcool/studio/storage/kv/filekv"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	errAndDie(conf.Validate())

	catalog := tier.Default()
	if conf.CatalogPath != "" {
		var err error
		catalog, err = tier.LoadCatalog(conf.CatalogPath, core.NewValidator(core.NewTranslator()))
		errAndDie(err)
	}

	filter := safety.NewDefault()
	if conf.SafetyPatternsPath != "" {
		var err error
		filter, err = safety.Load(conf.SafetyPatternsPath)
		errAndDie(err)
	}

	// start CLI
	cli := commandLine{
		catalog: catalog,
		filter:  filter,
		idStore: filekv.New(conf.IdentityFile),
		openDB: func(ctx context.Context) (*sqlx.DB, error) {
			if err := database.CreateIfNotExist(ctx, conf); err != nil {
				return nil, err
			}
			return database.Open(ctx, conf)
		},
		in:  os.Stdin,
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		switch err {
		case errHelp, errFlagged:
		default:
			logger.Printf("error: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
