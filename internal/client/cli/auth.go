package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophcourse/internal/client/client"
	"github.com/dmitrijs2005/gophcourse/internal/common"
)

// test seams
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in with the emailed address and the revealed password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				var err error
				if email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
					return err
				}
			}

			pw, err := getPassword(a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			if _, err := a.api.Login(ctx, email, string(pw)); err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					return errors.New("wrong email or password")
				}
				return err
			}
			if err := a.session.SetEmail(ctx, email); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in as %s\n", email)
			return nil
		},
	}
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) revealCmd() *cobra.Command {
	var overHTTP bool

	cmd := &cobra.Command{
		Use:   "reveal <email>",
		Short: "Show the one-time password issued after purchase",
		Long: "Show the one-time password issued after purchase.\n" +
			"The password can be revealed exactly once; store it right away.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pw  string
				err error
			)
			if overHTTP {
				pw, err = a.api.Reveal(cmd.Context(), args[0])
			} else {
				pw, err = a.credentials.Reveal(cmd.Context(), args[0])
			}
			switch {
			case err == nil:
			case errors.Is(err, client.ErrNotFound):
				return errors.New("no pending password for this email: it was already shown or never issued")
			case errors.Is(err, client.ErrExpired):
				return errors.New("the password expired before it was revealed, contact support")
			case errors.Is(err, client.ErrInvalidArgument):
				return errors.New("email is required")
			case errors.Is(err, client.ErrRateLimited):
				return errors.New("too many attempts, try again in a minute")
			default:
				return err
			}

			fmt.Fprintf(a.out, "Your password: %s\n", pw)
			fmt.Fprintln(a.out, "It is shown only once. Store it now, then run `login`.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&overHTTP, "http", false, "use the HTTP API instead of gRPC")
	return cmd
}

func (a *App) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the credential service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.credentials.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is reachable\n", a.config.ServerGRPCAddr)
			return nil
		},
	}
}
