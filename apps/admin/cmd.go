package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/submitly/backend/core/submission"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// statusUpdater is the part of submission.Service the CLI drives.
type statusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status submission.Status, notes ...string) (submission.Submission, error)
}

type commandLine struct {
	db     *sql.DB
	subSvc statusUpdater
	out    io.Writer
}

// needsDB reports whether the command in args talks to the database.
func needsDB(args []string) bool {
	if len(args) < 2 {
		return false
	}
	return args[1] == "migrate" || args[1] == "setstatus"
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command (up, down, status, redo, version, ...)")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a prompted password, for ADMIN_PASSWORD_HASH")
	fmt.Fprintln(cli.out, "  setstatus -id ID -status STATUS [-notes NOTES] - move a submission to STATUS and notify its requester")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setStatusCmd := flag.NewFlagSet("setstatus", flag.ContinueOnError)
	setStatusCmd.SetOutput(cli.out)
	setStatusID := setStatusCmd.String("id", "", "The submission id, eg. SUB-123456-7.")
	setStatusValue := setStatusCmd.String("status", "", "The new status: pending, processing, delivered or rejected.")
	setStatusNotes := setStatusCmd.String("notes", "", "Notes emailed to the requester.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "setstatus":
		if err := setStatusCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *setStatusID == "" || *setStatusValue == "" {
			setStatusCmd.Usage()
			return errHelp
		}
		return cli.setStatus(*setStatusID, *setStatusValue, *setStatusNotes)
	default:
		cli.printUsage()
		return errHelp
	}
}
