package main

import (
	"fmt"
	"log"
	"os"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
	emailsvc "github.com/submitly/backend/services/email"
	"github.com/submitly/backend/services/filestore"
	logsvc "github.com/submitly/backend/services/logger"
	"github.com/submitly/backend/storage/database"
	sqlxrepos "github.com/submitly/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Close() }() // flush pending reports

	cli := commandLine{out: os.Stdout}

	if needsDB(os.Args) {
		// set up DB
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer db.Close()

		var mailSvc core.EmailService
		if conf.Debug {
			mailSvc = emailsvc.NewConsoleService(conf)
		} else {
			mailSvc = emailsvc.NewSendgridService(conf)
		}
		validate := core.NewValidator()
		submission.InitValidators(validate)

		cli.db = db.DB
		cli.subSvc = submission.NewService(submission.Deps{
			Repo:      sqlxrepos.NewSubmissionRepository(db),
			Files:     filestore.NewMemoryStore(), // no uploads from the CLI
			Notifier:  core.NewMailNotifier(mailSvc, conf),
			Validator: validate,
			Logger:    logger,
			Conf:      conf,
		})
	}

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
