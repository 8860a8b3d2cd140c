package client

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secret-keeper/models"
)

func (a *App) secretCommand() *cobra.Command {
	secret := &cobra.Command{
		Use:   "secret",
		Short: "Read and write vault secrets",
	}

	var fromStdin bool
	set := &cobra.Command{
		Use:   "set VAULT_ID ENVIRONMENT KEY",
		Short: "Encrypt and store a value",
		Long: `Encrypts a value under the vault key and stores it. The value is read from a
hidden prompt, or from standard input with --stdin.`,
		Args: cobra.ExactArgs(3),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			value, err := a.readValue(cmd, fromStdin)
			if err != nil {
				return err
			}
			if err = a.services.VaultService.PutSecret(cmd.Context(), refFromArgs(args), value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s\n", args[1], args[2])
			return nil
		}),
	}
	set.Flags().BoolVar(&fromStdin, "stdin", false, "read the value from standard input")

	var copyValue bool
	get := &cobra.Command{
		Use:   "get VAULT_ID ENVIRONMENT KEY",
		Short: "Decrypt and print a value",
		Args:  cobra.ExactArgs(3),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			value, err := a.services.VaultService.GetSecret(cmd.Context(), refFromArgs(args))
			if err != nil {
				return err
			}
			return a.emit(cmd, value, copyValue)
		}),
	}
	get.Flags().BoolVarP(&copyValue, "copy", "c", false, "copy to the clipboard instead of printing")

	var environment string
	list := &cobra.Command{
		Use:   "list VAULT_ID",
		Short: "List secret names without decrypting them",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			refs, err := a.services.VaultService.ListSecrets(cmd.Context(), args[0], environment)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", ref.Environment, ref.Key)
			}
			return nil
		}),
	}
	list.Flags().StringVarP(&environment, "env", "e", "", "only list this environment")

	del := &cobra.Command{
		Use:   "delete VAULT_ID ENVIRONMENT KEY",
		Short: "Delete a value",
		Args:  cobra.ExactArgs(3),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			if err := a.services.VaultService.DeleteSecret(cmd.Context(), refFromArgs(args)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", args[1], args[2])
			return nil
		}),
	}

	secret.AddCommand(set, get, list, del)
	return secret
}

func refFromArgs(args []string) models.SecretRef {
	return models.SecretRef{VaultID: args[0], Environment: args[1], Key: args[2]}
}

func (a *App) readValue(cmd *cobra.Command, fromStdin bool) ([]byte, error) {
	if !fromStdin {
		value, err := a.prompter.Secret("Value: ")
		if err != nil {
			return nil, err
		}
		return []byte(value), nil
	}

	value, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}
	value = bytes.TrimRight(value, "\r\n")
	if len(value) == 0 {
		return nil, errEmptyInput
	}
	return value, nil
}

// emit prints value or, with toClipboard, copies it and prints nothing secret.
func (a *App) emit(cmd *cobra.Command, value []byte, toClipboard bool) error {
	if toClipboard {
		if err := a.copy(string(value)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).help.Render("copied to clipboard"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(value))
	return nil
}
