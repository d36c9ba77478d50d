package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
)

var errDuplicateTeacher = errors.New("an account with this email already exists")

// addTeacher provisions a teacher account on the credential store. Accounts
// live there, not in our database; confirmation flows are the store's.
func (cli *commandLine) addTeacher(email, pwd string) error {
	email = core.CleanString(email, true /* lower */)

	res, err := cli.credStore.SignUp(context.Background(), email, pwd)
	if err != nil {
		if errors.Cause(err) == auth.ErrDuplicateAccount {
			return errDuplicateTeacher
		}
		return err
	}
	if res.Session != nil {
		fmt.Printf("Teacher account created and confirmed: %s\n", email)
	} else {
		fmt.Printf("Teacher account created! A confirmation email was sent to %s\n", email)
	}
	return nil
}
