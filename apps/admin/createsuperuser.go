package main

import (
	"context"
	"time"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/user"
)

// createSuperuser updates or creates an Administrator account.
func (cli *commandLine) createSuperuser(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Email:         email,
			Name:          name,
			Role:          user.RoleAdministrator,
			IsActive:      true,
			LastLogin:     now,
			CreatedAt:     now,
			UpdatedAt:     now,
			Administrator: &user.AdministratorProfile{AccessLevel: user.AccessLevelFull},
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
