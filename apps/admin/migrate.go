package main

import (
	"github.com/gurujilabs/guruji/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	return migrateFunc(cli.db)
}
