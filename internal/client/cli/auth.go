package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, email, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.log.Warn(ctx, "login failed", "email", email, "error", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s [%s]\n", u.Email, strings.Join(u.Roles, ", "))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.auth.WhoAmI(ctx)
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s [%s]\n", u.Email, strings.Join(u.Roles, ", "))
	return nil
}
