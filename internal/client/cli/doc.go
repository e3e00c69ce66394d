// Package cli is the authctl command-line client.
//
// Without arguments it starts an interactive REPL (register, login,
// validate, token, logout). With a command it runs once:
//
//	authctl register
//	authctl login
//	authctl validate <token>
//
// Passwords are read from the terminal without echo and wiped after use.
package cli
