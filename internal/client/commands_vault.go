package client

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (a *App) vaultCommand() *cobra.Command {
	vault := &cobra.Command{
		Use:   "vault",
		Short: "Create vaults and manage who can read them",
	}

	vault.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a vault owned by you",
			Args:  cobra.ExactArgs(1),
			RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
				v, err := a.services.VaultService.CreateVault(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.VaultID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the vaults you belong to",
			Args:  cobra.NoArgs,
			RunE: a.withSession(func(cmd *cobra.Command, _ []string) error {
				vaults, err := a.services.VaultService.ListVaults(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tKEY VERSION")
				for _, v := range vaults {
					fmt.Fprintf(w, "%s\t%s\t%d\n", v.VaultID, v.Name, v.KeyVersion)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "members VAULT_ID",
			Short: "List the members of a vault",
			Args:  cobra.ExactArgs(1),
			RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
				members, err := a.services.VaultService.ListMembers(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tLOGIN")
				for _, m := range members {
					fmt.Fprintf(w, "%d\t%s\n", m.UserID, m.Login)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "grant VAULT_ID LOGIN",
			Short: "Give a registered user access to a vault",
			Args:  cobra.ExactArgs(2),
			RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
				if err := a.services.VaultService.Grant(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted %s access to %s\n", args[1], args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "revoke VAULT_ID LOGIN",
			Short: "Remove a member and rotate the vault key",
			Long: `Removes a member and, in the same request, replaces the vault key: every
secret is re-encrypted and the new key is sealed for the remaining members.
The removed member may still hold values they read earlier; rotate the real
credentials if that matters.`,
			Args: cobra.ExactArgs(2),
			RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
				member, err := a.findMember(cmd, args[0], args[1])
				if err != nil {
					return err
				}
				version, err := a.services.VaultService.Revoke(cmd.Context(), args[0], member.UserID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s; vault key is now version %d\n", member.Login, version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rotate VAULT_ID",
			Short: "Replace the vault key and re-encrypt every secret",
			Args:  cobra.ExactArgs(1),
			RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
				version, err := a.services.VaultService.RotateKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "vault key is now version %d\n", version)
				return nil
			}),
		},
	)
	return vault
}

func (a *App) findMember(cmd *cobra.Command, vaultID, login string) (models.Member, error) {
	members, err := a.services.VaultService.ListMembers(cmd.Context(), vaultID)
	if err != nil {
		return models.Member{}, err
	}
	idx := slices.IndexFunc(members, func(m models.Member) bool { return m.Login == login })
	if idx < 0 {
		return models.Member{}, fmt.Errorf("%w: %s", service.ErrNotVaultMember, login)
	}
	return members[idx], nil
}
