package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/client/client"
	"github.com/dmitrijs2005/credkeeper/internal/common"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	identity, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return identity, password, nil
}

// Register prompts for an email and password, creates the account and keeps
// the returned token for the session.
func (a *App) Register(ctx context.Context) error {
	identity, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Register(ctx, identity, password)
	if err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			fmt.Fprintln(a.out, "User already exists")
		} else {
			fmt.Fprintf(a.out, "Registration failed: %s\n", err.Error())
		}
		return err
	}

	a.identity, a.token = identity, token
	fmt.Fprintln(a.out, "Success!")
	fmt.Fprintln(a.out, token)
	return nil
}

// Login prompts for credentials and stores the token on success.
func (a *App) Login(ctx context.Context) error {
	identity, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Login(ctx, identity, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid email or password")
		} else {
			fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		}
		return err
	}

	a.identity, a.token = identity, token
	fmt.Fprintln(a.out, "Login successful")
	fmt.Fprintln(a.out, token)
	return nil
}

// Validate checks token, or the session token when token is empty.
func (a *App) Validate(ctx context.Context, token string) error {
	if token == "" {
		token = a.token
	}

	ok, err := a.client.Validate(ctx, token)
	if err != nil {
		fmt.Fprintf(a.out, "Validation failed: %s\n", err.Error())
		return err
	}

	if ok {
		fmt.Fprintln(a.out, "valid")
	} else {
		fmt.Fprintln(a.out, "invalid")
	}
	return nil
}

// ShowToken prints the session token.
func (a *App) ShowToken(context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.out, a.token)
	return nil
}

// Logout forgets the session token.
func (a *App) Logout(context.Context) error {
	a.identity, a.token = "", ""
	return nil
}
