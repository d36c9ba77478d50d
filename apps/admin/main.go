package main

import (
	"log"
	"os"

	"github.com/trezcool/mwalimu/core"
	credsvc "github.com/trezcool/mwalimu/services/credential"
	"github.com/trezcool/mwalimu/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		db:        db,
		credStore: credsvc.NewGoTrueStore(core.Conf.GoTrue.URL, core.Conf.GoTrue.APIKey),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
