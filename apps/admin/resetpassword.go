package main

import (
	"context"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	_, err := cli.admSvc.SetPassword(context.Background(), email, pwd)
	return err
}
