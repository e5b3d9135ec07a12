package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials(args []string) (string, []byte, error) {
	var login string
	if len(args) > 0 {
		login = args[0]
	} else {
		var err error
		login, err = getSimpleText(a.scanner, "Enter login", a.out)
		if err != nil {
			return "", nil, err
		}
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return login, password, nil
}

// Register creates an account. The login can be given as the first
// argument; the password is always read without echo.
func (a *App) Register(ctx context.Context, args []string) error {
	login, password, err := a.readCredentials(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()
	if err := a.auth.Register(ctx, login, password); err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	printlnFn("Success! You can now log in.")
	return nil
}

// Login authenticates. An open document starts syncing right away.
func (a *App) Login(ctx context.Context, args []string) error {
	login, password, err := a.readCredentials(args)
	if err != nil {
		return err
	}

	lctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()
	if err := a.auth.Login(lctx, login, password); err != nil {
		printlnFn("Login unsuccessful:", err)
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s", login))
	if s := a.current(); s != nil {
		s.SetOnline(ctx, a.online())
	}
	return nil
}
