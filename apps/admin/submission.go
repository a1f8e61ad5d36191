package main

import (
	"context"
	"fmt"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/auth"
	"github.com/submitly/backend/core/submission"
)

func (cli *commandLine) hashPassword(pwd string) error {
	hash, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, hash)
	return nil
}

// setStatus moves a submission to status. A failed notification is reported but does not fail the command.
func (cli *commandLine) setStatus(id, status, notes string) error {
	st, err := submission.ParseStatus(status)
	if err != nil {
		return err
	}
	sub, err := cli.subSvc.UpdateStatus(context.Background(), id, st, notes)
	if err != nil {
		if !core.IsNotificationFailure(err) {
			return err
		}
		fmt.Fprintf(cli.out, "warning: %v\n", err)
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", sub.ID, sub.Status.Label())
	return nil
}
