package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// loginEnv names the environment variable that supplies --login.
const loginEnv = "SECRET_KEEPER_LOGIN"

type App struct {
	services  *service.ClientServices
	buildInfo models.AppBuildInfo

	prompter Prompter
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	copy     func(string) error

	login string

	logger *logger.Logger
}

var _ Client = (*App)(nil)

func NewApp(services *service.ClientServices, buildInfo models.AppBuildInfo, logger *logger.Logger) *App {
	return &App{
		services:  services,
		buildInfo: buildInfo,
		prompter:  newTerminalPrompter(),
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
		copy:      clipboard.WriteAll,
		logger:    logger,
	}
}

// Run executes args against a fresh command tree. The session is locked on
// return whatever the outcome.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.services.AuthService.Lock()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "secret-keeper",
		Short: "Zero-knowledge team secret manager",
		Long: `secret-keeper stores team secrets in shared vaults. Values are encrypted
on this machine; the server only ever sees ciphertext.

Commands that open a vault ask for your master password. Set
` + loginEnv + ` or pass --login to skip the login prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.login, "login", "l", os.Getenv(loginEnv), "account login")

	root.AddCommand(
		a.registerCommand(),
		a.passwdCommand(),
		a.vaultCommand(),
		a.secretCommand(),
		a.shareCommand(),
		a.versionCommand(),
	)
	return root
}

// unlock prompts for the missing credentials and opens the session.
func (a *App) unlock(ctx context.Context) error {
	login, err := a.loginOrPrompt()
	if err != nil {
		return err
	}
	password, err := a.prompter.Secret("Master password: ")
	if err != nil {
		return err
	}

	if err = a.services.AuthService.Unlock(ctx, login, password); err != nil {
		return err
	}
	a.logger.Debug().Str("login", login).Msg("unlocked for command")
	return nil
}

func (a *App) loginOrPrompt() (string, error) {
	if a.login != "" {
		return a.login, nil
	}
	return a.prompter.Line("Login: ")
}

// withSession wraps a command body so that it runs unlocked.
func (a *App) withSession(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.unlock(cmd.Context()); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\n", a.buildInfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", a.buildInfo.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Build commit: %s\n", a.buildInfo.Commit)
		},
	}
}
