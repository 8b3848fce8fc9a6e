package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// NewLoginCommand creates the login command
func NewLoginCommand(container *app.Container, prompter ui.Prompter) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Widgera service",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := askUsername(prompter, username)
			if err != nil {
				return err
			}
			password, err := prompter.Password("Password")
			if err != nil {
				return err
			}
			session, err := container.AuthService.Login(cmd.Context(), user, password)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), session)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	return cmd
}

// NewRegisterCommand creates the register command
func NewRegisterCommand(container *app.Container, prompter ui.Prompter) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Widgera account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := askUsername(prompter, username)
			if err != nil {
				return err
			}
			password, err := prompter.Password("Password")
			if err != nil {
				return err
			}
			confirm, err := prompter.Password("Confirm password")
			if err != nil {
				return err
			}
			session, err := container.AuthService.Register(cmd.Context(), user, password, confirm)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), session)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.AuthService.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgLoggedOut)
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command
func NewWhoamiCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := container.AuthService.Current()
			if !session.LoggedIn() {
				return domain.ErrNotLoggedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", session.Username, container.Client.BaseURL())
			return nil
		},
	}
}

func askUsername(prompter ui.Prompter, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return prompter.Input("Username", "")
}

func printWelcome(out io.Writer, session domain.Session) {
	fmt.Fprintf(out, "Logged in as %s\n", session.Username)
}

// requireSession fails fast when no credential is stored.
func requireSession(container *app.Container) error {
	if !container.Sessions.Current().LoggedIn() {
		return fmt.Errorf("%w (run `widgera login`)", domain.ErrNotLoggedIn)
	}
	return nil
}
