package main

import (
	"context"

	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
)

// addAdmin creates a back-office account, or resets the password when the
// email is already taken.
func (cli *commandLine) addAdmin(email, role, pwd string) error {
	ctx := context.Background()

	_, err := cli.admSvc.Create(ctx, email, role, pwd)
	if err == admin.ErrEmailExists {
		_, err = cli.admSvc.SetPassword(ctx, email, pwd)
	}
	return err
}
