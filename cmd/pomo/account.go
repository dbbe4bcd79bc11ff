package main

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/spf13/cobra"
)

var (
	accountEmail    string
	accountPassword string
	accountConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the token",
	Example: `  pomo login --email ann@example.com --password secret
  POMO_PASSWORD=secret pomo login --email ann@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Example: `  pomo register --email ann@example.com --password secret
  POMO_PASSWORD=secret pomo register --email ann@example.com`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&accountEmail, "email", "", "Account email (required)")
		c.Flags().StringVar(&accountPassword, "password", "", "Account password (default $POMO_PASSWORD)")
		c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&accountConfirm, "confirm", "", "Repeat the password (default: same as --password)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

func password() string {
	if accountPassword != "" {
		return accountPassword
	}
	return os.Getenv("POMO_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	_, err = a.auth.Login(ctx, accountEmail, password())
	return printAuthResult(auth.FormLogin, err, "Signed in as "+accountEmail, a.store.Path())
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	pw := password()
	confirm := accountConfirm
	if confirm == "" {
		confirm = pw
	}

	// Register plus the follow-up login
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.RequestTimeout)
	defer cancel()

	_, err = a.auth.Register(ctx, accountEmail, pw, confirm)
	return printAuthResult(auth.FormRegister, err, "Registered and signed in as "+accountEmail, a.store.Path())
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.auth.Logout(); err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Println("✓ Logged out")
	return nil
}

func printAuthResult(form auth.Form, err error, success, tokenPath string) error {
	if err != nil {
		color.New(color.FgRed, color.Bold).Printf("✗ %s\n", auth.Message(form, err))
		return errors.New("authentication failed")
	}
	color.New(color.FgGreen, color.Bold).Printf("✓ %s\n", success)
	color.New(color.FgCyan).Printf("  token stored in %s\n", tokenPath)
	return nil
}
