package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tripwhizz/tripsync/internal/apiclient"
	"github.com/tripwhizz/tripsync/internal/auth"
)

// credentialFlags binds --email and --password. The password may instead
// come from TRIPWHIZZ_PASSWORD or the first line of stdin.
func credentialFlags(cmd *cobra.Command, cred *apiclient.Credentials) {
	cmd.Flags().StringVar(&cred.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&cred.Password, "password", "", "Account password (or TRIPWHIZZ_PASSWORD, or stdin)")
	_ = cmd.MarkFlagRequired("email")
}

func readPassword(cmd *cobra.Command, cred *apiclient.Credentials) error {
	if cred.Password != "" {
		return nil
	}
	if p := os.Getenv("TRIPWHIZZ_PASSWORD"); p != "" {
		cred.Password = p
		return nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("password required: pass --password, set TRIPWHIZZ_PASSWORD, or pipe it on stdin")
	}
	cred.Password = strings.TrimRight(line, "\r\n")
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	var cred apiclient.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token for tripctl and tripsyncd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := readPassword(cmd, &cred); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := a.client.Users().Login(ctx, cred)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if resp.Token == "" {
				return errors.New("login: backend returned no token")
			}
			if err := a.creds.Save(auth.Credentials{Token: resp.Token, UserID: resp.UserID, Email: cred.Email}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (user %d). Credentials saved to %s\n", cred.Email, resp.UserID, a.creds.Path())
			return nil
		},
	}
	credentialFlags(cmd, &cred)
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.creds.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var cred apiclient.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := readPassword(cmd, &cred); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := a.client.Users().Register(ctx, cred)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			return a.print(resp)
		},
	}
	credentialFlags(cmd, &cred)
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := a.client.Users().RequestPasswordReset(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Reset link requested")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			u, err := a.client.Users().Me(ctx)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}
}
