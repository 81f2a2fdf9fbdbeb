package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
	emailsvc "github.com/jnanisc/backend/services/email"
	"github.com/jnanisc/backend/storage/database"
	mongorepos "github.com/jnanisc/backend/storage/database/mongo"
)

func main() {
	conf := core.NewConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)
	defer database.Close(context.Background(), db) //nolint:errcheck

	cli := &commandLine{
		usrSvc:  user.NewService(mongorepos.NewUserRepository(db), emailsvc.NewConsoleService(conf), conf),
		roleSvc: role.NewService(mongorepos.NewRoleRepository(db)),
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		errAndDie(err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
