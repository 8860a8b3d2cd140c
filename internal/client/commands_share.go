package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secret-keeper/internal/share"
)

func (a *App) shareCommand() *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Send a one-off value through an expiring link",
	}

	var (
		ttl       time.Duration
		maxViews  int
		protect   bool
		fromStdin bool
		copyLink  bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Encrypt a value and print a share link",
		Long: `Encrypts a value with a fresh key and uploads only the ciphertext. The key
travels in the link fragment, which browsers and the server never see.

With --protect the key is additionally wrapped under a link password that
must be passed to the recipient separately.`,
		Args: cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, _ []string) error {
			value, err := a.readValue(cmd, fromStdin)
			if err != nil {
				return err
			}

			var password string
			if protect {
				if password, err = confirmSecret(a.prompter, "Link password: "); err != nil {
					return err
				}
			}

			link, err := a.services.ShareService.Share(cmd.Context(), value, password, ttl, maxViews)
			if err != nil {
				return err
			}
			expires := "expires " + link.ExpiresAt.Local().Format(time.RFC1123)
			fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).help.Render(expires))
			return a.emit(cmd, []byte(link.URL), copyLink)
		}),
	}
	create.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the link stays valid")
	create.Flags().IntVar(&maxViews, "views", 1, "how many times the link can be opened")
	create.Flags().BoolVar(&protect, "protect", false, "also require a link password")
	create.Flags().BoolVar(&fromStdin, "stdin", false, "read the value from standard input")
	create.Flags().BoolVarP(&copyLink, "copy", "c", false, "copy the link to the clipboard instead of printing")

	var copyValue bool
	open := &cobra.Command{
		Use:   "open URL",
		Short: "Fetch and decrypt a share link",
		Long:  `Opens a share link. Each successful open consumes one view.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.services.ShareService.Resolve(cmd.Context(), args[0], "")
			if errors.Is(err, share.ErrPasswordRequired) {
				var password string
				if password, err = a.prompter.Secret("Link password: "); err != nil {
					return err
				}
				value, err = a.services.ShareService.Resolve(cmd.Context(), args[0], password)
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, value, copyValue)
		},
	}
	open.Flags().BoolVarP(&copyValue, "copy", "c", false, "copy to the clipboard instead of printing")

	shareCmd.AddCommand(create, open)
	return shareCmd
}
