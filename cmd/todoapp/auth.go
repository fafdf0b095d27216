package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todoapp/todoapp/internal/navigation"
	"github.com/todoapp/todoapp/pkg/todoclient"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and remember the session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, _ := cmd.Flags().GetString("password")

		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runLogin(cmd.Context(), os.Stdout, s, args[0], password); err != nil {
			handleError(err)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		req := todoclient.RegisterRequest{Username: args[0], Email: email, Password: password}
		if err := runRegister(cmd.Context(), os.Stdout, s, req); err != nil {
			handleError(err)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runLogout(os.Stdout, s); err != nil {
			handleError(err)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runWhoami(os.Stdout, s); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password (at least 8 characters)")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}

func runLogin(ctx context.Context, w io.Writer, s *clientSession, username, password string) error {
	if err := s.gate(navigation.LoginPath); err != nil {
		return err
	}
	if err := s.auth.Login(ctx, username, password); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Logged in as %s", s.auth.Username()), jsonOutput)
	return nil
}

func runRegister(ctx context.Context, w io.Writer, s *clientSession, req todoclient.RegisterRequest) error {
	if err := s.gate(navigation.RegisterPath); err != nil {
		return err
	}
	if err := s.auth.Register(ctx, req); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Registered and logged in as %s", s.auth.Username()), jsonOutput)
	return nil
}

func runLogout(w io.Writer, s *clientSession) error {
	if !s.auth.IsAuthenticated() {
		printSuccess(w, "Not logged in", jsonOutput)
		return nil
	}
	username := s.auth.Username()
	if err := s.auth.Logout(); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Logged out %s", username), jsonOutput)
	return nil
}

func runWhoami(w io.Writer, s *clientSession) error {
	if err := s.gate(navigation.HomePath); err != nil {
		return err
	}
	printUser(w, s.auth.Username(), s.auth.Email(), jsonOutput)
	return nil
}
