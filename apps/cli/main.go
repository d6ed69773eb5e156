package main

import (
	"bufio"
	"os"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/session"
	"github.com/campuskit/gradebook/core/user"
	logsvc "github.com/campuskit/gradebook/services/logger"
	jsonfiledb "github.com/campuskit/gradebook/storage/jsonfile"
)

func main() {
	logger := logsvc.NewZerologLogger()

	// set up storage & repos
	db, err := jsonfiledb.Open(core.Conf.GetString("dataFile"), logger)
	if err != nil {
		logger.Fatal("opening data file", "error", err)
	}
	usrRepo := jsonfiledb.NewUserRepository(db)
	crsRepo := jsonfiledb.NewCourseRepository(db)

	// set up services
	sessions := session.NewTracker(logger)
	usrSvc := user.NewService(usrRepo, sessions, logger)
	crsSvc := course.NewService(crsRepo, usrRepo, logger)
	if err := usrSvc.RestoreSessions(); err != nil {
		logger.Fatal("restoring sessions", "error", err)
	}

	// start CLI
	cli := &commandLine{
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		usrSvc: usrSvc,
		crsSvc: crsSvc,
	}
	if err := cli.run(); err != nil {
		logger.Fatal("cli exited", "error", err)
	}
}
