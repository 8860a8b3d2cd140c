package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account and its identity key pair",
		Long: `Creates an account. The master password never leaves this machine: it is
stretched with Argon2id into a master key, and only a derived login hash and
the encrypted identity key are uploaded.

There is no password recovery. Losing the master password loses access to
every vault that has not been shared with another member.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, err := a.loginOrPrompt()
			if err != nil {
				return err
			}
			password, err := confirmSecret(a.prompter, "Master password: ")
			if err != nil {
				return err
			}

			user, err := a.services.AuthService.Register(cmd.Context(), login, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)\n", login, user.UserID)
			fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).help.Render(
				"there is no password recovery; keep the master password safe"))
			return nil
		},
	}
}

func (a *App) passwdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, err := a.loginOrPrompt()
			if err != nil {
				return err
			}
			current, err := a.prompter.Secret("Current master password: ")
			if err != nil {
				return err
			}
			if err = a.services.AuthService.Unlock(cmd.Context(), login, current); err != nil {
				return err
			}

			next, err := confirmSecret(a.prompter, "New master password: ")
			if err != nil {
				return err
			}
			if err = a.services.AuthService.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "master password changed")
			return nil
		},
	}
}
