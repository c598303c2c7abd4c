package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tarefista/tarefista/internal/session"
)

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, tests).
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)

	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to your account",
		Long: `Authenticates against the backend and stores the session locally.
Tasks created anonymously on this device before logging in stay on the
anonymous identity; future tasks belong to the account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			email := strings.TrimSpace(args[0])
			if password == "" {
				password, err = promptPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			sess, err := app.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			name := sess.User.DisplayName
			if name == "" {
				name = email
			}
			cmd.Printf("Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var (
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			email := strings.TrimSpace(args[0])
			if password == "" {
				password, err = promptPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			sess, err := app.session.Register(cmd.Context(), name, email, password)
			if errors.Is(err, session.ErrRegistrationNeedsLogin) {
				cmd.Println("Account created, run \"tarefista login\" to continue")
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("Account created, logged in as %s\n", displayName(sess.User.DisplayName, email))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		Long: `Clears the session, profile and anonymous identity from this device.
The server-side logout is best-effort: local state is removed even when
the backend cannot be reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.session.Logout(cmd.Context()); err != nil {
				cmd.Printf("Logged out locally (server-side logout failed: %v)\n", err)
				return nil
			}

			cmd.Println("Logged out")
			return nil
		},
	}

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			ident, err := app.session.Identity(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case ident.UserID != "":
				if profile := app.session.Profile(); profile != nil && profile.Email != "" {
					cmd.Printf("Logged in as %s (%s)\n", profile.Email, ident.UserID)
				} else {
					cmd.Printf("Logged in as %s\n", ident.UserID)
				}
			case ident.TempUserID != "":
				cmd.Printf("Anonymous (%s)\n", ident.TempUserID)
			default:
				cmd.Println("No identity yet")
			}
			return nil
		},
	}

	return cmd
}
