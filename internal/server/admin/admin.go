// Package admin implements the out-of-band maintenance commands run by
// codepulse-admin against the credential store.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
)

// RoleManager changes role membership for a registered identity.
type RoleManager interface {
	AssignRole(ctx context.Context, email, role string) error
	RemoveRole(ctx context.Context, email, role string) error
}

var ErrUsage = errors.New("usage: codepulse-admin grant|revoke -email <email> -role <Reader|Writer>")

// Run executes one command described by args (without the program name).
func Run(ctx context.Context, rm RoleManager, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd := args[0]
	var apply func(ctx context.Context, email, role string) error
	switch cmd {
	case "grant":
		apply = rm.AssignRole
	case "revoke":
		apply = rm.RemoveRole
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "identity email")
	role := fs.String("role", "", "role name")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	e := strings.TrimSpace(*email)
	r, ok := canonicalRole(*role)
	if e == "" || !ok {
		return ErrUsage
	}

	if err := apply(ctx, e, r); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no identity registered as %s", e)
		}
		return err
	}

	verb := "granted to"
	if cmd == "revoke" {
		verb = "revoked from"
	}
	fmt.Fprintf(out, "%s %s %s\n", r, verb, e)
	return nil
}

func canonicalRole(s string) (string, bool) {
	for _, r := range []string{common.RoleReader, common.RoleWriter} {
		if strings.EqualFold(strings.TrimSpace(s), r) {
			return r, true
		}
	}
	return "", false
}
