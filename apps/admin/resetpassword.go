package main

import (
	"context"

	"github.com/gurujilabs/guruji/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, usr, nil); err != nil {
		return err
	}
	return nil
}
