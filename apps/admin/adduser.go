package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email)

	var roles []string
	if isAdmin {
		roles = []string{user.DefaultAdminRole}
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:     name,
			Email:    email,
			Password: pwd,
			Roles:    roles,
		})
		return err
	}

	active := true
	_, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		Name:     name,
		IsActive: &active,
		Roles:    roles,
		Password: pwd,
	})
	return err
}

// bootstrap seeds the admin role and the default admin account; both are
// idempotent so re-running it is harmless.
func (cli *commandLine) bootstrap() error {
	ctx := context.Background()
	if _, err := cli.roleSvc.EnsureAdminRole(ctx); err != nil {
		return err
	}
	_, err := cli.usrSvc.EnsureDefaultAdmin(ctx)
	return err
}
